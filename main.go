package main

import (
	"log"

	"github.com/jobsniper/jobsniper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
