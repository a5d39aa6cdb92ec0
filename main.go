package main

import "github.com/dustmask/dustmask/cmd/dustmask"

func main() { dustmask.Execute() }
