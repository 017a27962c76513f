package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func main() {
	bin, err := exec.LookPath("funkanban")
	if err != nil {
		fmt.Fprintln(os.Stderr, "fkb: funkanban not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"funkanban"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "fkb: %v\n", err)
		os.Exit(1)
	}
}
