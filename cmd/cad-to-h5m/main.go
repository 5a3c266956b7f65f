package main

import "github.com/fusion-energy/cad-to-h5m/internal/cmd"

func main() {
	cmd.Parse()
}
