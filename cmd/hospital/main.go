// Command hospital runs the hospital API and its administrative tasks.
//
//	@title						Hospital API
//	@version					1.0
//	@description				Session-authenticated hospital backend: patients, doctors and appointments.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
