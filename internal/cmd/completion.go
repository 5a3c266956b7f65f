package cmd

import (
	"fmt"
	"io"
	"os"
)

type CompletionCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish" help:"Shell type: bash, zsh, or fish"`
}

func (c *CompletionCmd) Run() error {
	return c.write(os.Stdout)
}

func (c *CompletionCmd) write(w io.Writer) error {
	var script string
	switch c.Shell {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", c.Shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

const bashCompletion = `# bash completion for cad-to-h5m

_cad_to_h5m_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main commands
    if [[ ${COMP_CWORD} -eq 1 ]]; then
        opts="convert inspect version completion"
        COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        return 0
    fi

    # Options for convert command
    if [[ ${COMP_WORDS[1]} == "convert" ]]; then
        case "${prev}" in
            -o|--output)
                COMPREPLY=( $(compgen -f -X '!*.h5m' -- ${cur}) )
                return 0
                ;;
            --exo)
                COMPREPLY=( $(compgen -f -X '!*.exo' -- ${cur}) )
                return 0
                ;;
            --cubit)
                COMPREPLY=( $(compgen -f -X '!*.@(cub|cub5)' -- ${cur}) )
                return 0
                ;;
            --geometry-details)
                COMPREPLY=( $(compgen -f -X '!*.@(json|yaml|yml)' -- ${cur}) )
                return 0
                ;;
            --engine-path)
                COMPREPLY=( $(compgen -d -- ${cur}) )
                return 0
                ;;
            --log-level)
                COMPREPLY=( $(compgen -W "debug info warn error" -- ${cur}) )
                return 0
                ;;
            --log-format)
                COMPREPLY=( $(compgen -W "console json" -- ${cur}) )
                return 0
                ;;
            *)
                if [[ ${cur} == -* ]]; then
                    opts="-o --output --exo --cubit --geometry-details --engine-path --merge-tolerance --faceting-tolerance --no-watertight --no-imprint --reflective-name --implicit-complement --log-level --log-format --log-file --metrics-file -v --verbose -h --help"
                    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
                else
                    COMPREPLY=( $(compgen -f -X '!*.@(stp|step|sat|yaml|yml)' -- ${cur}) )
                fi
                return 0
                ;;
        esac
    fi

    # Options for inspect command
    if [[ ${COMP_WORDS[1]} == "inspect" ]]; then
        if [[ ${cur} == -* ]]; then
            opts="--raw --style -h --help"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -f -X '!*.@(json|yaml|yml)' -- ${cur}) )
        fi
        return 0
    fi

    # Options for completion command
    if [[ ${COMP_WORDS[1]} == "completion" ]]; then
        if [[ ${COMP_CWORD} -eq 2 ]]; then
            opts="bash zsh fish"
            COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        fi
        return 0
    fi
}

complete -F _cad_to_h5m_completions cad-to-h5m
`

const zshCompletion = `#compdef cad-to-h5m

_cad_to_h5m() {
    local -a commands
    commands=(
        'convert:Convert CAD parts into a DAGMC h5m file'
        'inspect:Show a geometry details file'
        'version:Show version information'
        'completion:Generate shell completion script'
    )

    local -a convert_opts
    convert_opts=(
        '(-o --output)'{-o,--output}'[Surface mesh output]:output file:_files -g "*.h5m"'
        '--exo[Volume mesh output]:exodus file:_files -g "*.exo"'
        '--cubit[Session output]:cubit file:_files -g "*.{cub,cub5}"'
        '--geometry-details[Geometry details output]:record:_files -g "*.{json,yaml,yml}"'
        '--engine-path[Cubit installation directory]:directory:_files -/'
        '--merge-tolerance[Merge tolerance]:tolerance:'
        '--faceting-tolerance[Faceting tolerance]:tolerance:'
        '--no-watertight[Do not make the mesh watertight]'
        '--no-imprint[Do not imprint bodies]'
        '--reflective-name[Group name of reflecting surfaces]:name:'
        '--implicit-complement[Implicit complement material]:material:'
        '--log-level[Log level]:level:(debug info warn error)'
        '--log-format[Log format]:format:(console json)'
        '--log-file[Log file]:log file:_files'
        '--metrics-file[Metrics textfile]:metrics file:_files'
        '(-v --verbose)'{-v,--verbose}'[Print every step]'
        '(-h --help)'{-h,--help}'[Show help]'
        '*:parts:_files -g "*.{stp,step,sat,yaml,yml}"'
    )

    local -a inspect_opts
    inspect_opts=(
        '--raw[Print the highlighted file]'
        '--style[Highlighting style]:style:'
        '(-h --help)'{-h,--help}'[Show help]'
        '*:geometry details:_files -g "*.{json,yaml,yml}"'
    )

    local -a completion_shells
    completion_shells=(
        'bash:Generate bash completion'
        'zsh:Generate zsh completion'
        'fish:Generate fish completion'
    )

    _arguments -C \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                convert)
                    _arguments $convert_opts
                    ;;
                inspect)
                    _arguments $inspect_opts
                    ;;
                completion)
                    _describe 'shell' completion_shells
                    ;;
                version)
                    _arguments '(-h --help)'{-h,--help}'[Show help]'
                    ;;
            esac
            ;;
    esac
}

_cad_to_h5m
`

const fishCompletion = `# fish completion for cad-to-h5m

# Main commands
complete -c cad-to-h5m -f -n "__fish_use_subcommand" -a "convert" -d "Convert CAD parts into a DAGMC h5m file"
complete -c cad-to-h5m -f -n "__fish_use_subcommand" -a "inspect" -d "Show a geometry details file"
complete -c cad-to-h5m -f -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c cad-to-h5m -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# convert command options
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -s o -l output -d "Surface mesh output" -r -a "(__fish_complete_suffix .h5m)"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l exo -d "Volume mesh output" -r -a "(__fish_complete_suffix .exo)"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l cubit -d "Session output" -r -a "(__fish_complete_suffix .cub5)"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l geometry-details -d "Geometry details output" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l engine-path -d "Cubit installation directory" -r -a "(__fish_complete_directories)"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l merge-tolerance -d "Merge tolerance" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l faceting-tolerance -d "Faceting tolerance" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l no-watertight -d "Do not make the mesh watertight"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l no-imprint -d "Do not imprint bodies"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l reflective-name -d "Group name of reflecting surfaces" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l implicit-complement -d "Implicit complement material" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l log-level -d "Log level" -r -a "debug info warn error"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l log-format -d "Log format" -r -a "console json"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l log-file -d "Log file" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -l metrics-file -d "Metrics textfile" -r
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from convert" -s v -l verbose -d "Print every step"
complete -c cad-to-h5m -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .stp)" -d "STEP file"
complete -c cad-to-h5m -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .step)" -d "STEP file"
complete -c cad-to-h5m -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .sat)" -d "ACIS file"
complete -c cad-to-h5m -n "__fish_seen_subcommand_from convert" -a "(__fish_complete_suffix .yaml)" -d "YAML config"

# inspect command options
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from inspect" -l raw -d "Print the highlighted file"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from inspect" -l style -d "Highlighting style" -r
complete -c cad-to-h5m -n "__fish_seen_subcommand_from inspect" -a "(__fish_complete_suffix .json)" -d "Geometry details"

# completion command options
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from completion" -a "bash" -d "Generate bash completion"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from completion" -a "zsh" -d "Generate zsh completion"
complete -c cad-to-h5m -f -n "__fish_seen_subcommand_from completion" -a "fish" -d "Generate fish completion"
`

func (c *CompletionCmd) Help() string {
	return `
Generate shell completion scripts for cad-to-h5m.

Examples:
  # Bash
  cad-to-h5m completion bash > ~/.local/share/bash-completion/completions/cad-to-h5m

  # Zsh
  cad-to-h5m completion zsh > ~/.zsh/completion/_cad-to-h5m

  # Fish
  cad-to-h5m completion fish > ~/.config/fish/completions/cad-to-h5m.fish
`
}
