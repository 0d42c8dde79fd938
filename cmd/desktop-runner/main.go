// Command desktop-runner generates and executes UI tests for desktop applications.
package main

import "github.com/devicelab-dev/desktop-runner/pkg/cli"

func main() {
	cli.Execute()
}
