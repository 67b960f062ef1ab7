package main

import (
	"log"

	"github.com/tomasbalestrin-brius/Suporte-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
