// cmd/contactmail/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/contactmail/app"
	"github.com/dalemusser/contactmail/internal/app/bootstrap"
	"github.com/dalemusser/contactmail/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "version" || os.Args[1] == "--version") {
		fmt.Println("contactmail", version.String())
		return
	}
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		fmt.Fprintln(os.Stderr, "contactmail:", err)
		os.Exit(1)
	}
}
