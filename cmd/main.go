package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"bank-ledger-api/app"
	"bank-ledger-api/config"
	"bank-ledger-api/model"
	"bank-ledger-api/service"
)

// @title           Bank Ledger API
// @version         1.0
// @description     Account ledger service: deposits, withdrawals and transfers recorded atomically with their ledger entries.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	issueToken := flag.Int64("issue-token", 0, "print a bearer token for this user id and exit (local development)")
	flag.Parse()

	if *issueToken > 0 {
		if err := config.LoadConfig("."); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		token, err := service.GenerateJWT([]byte(config.AppConfig.JWT.SecretKey), model.Identity{UserID: *issueToken}, 24*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	app.Run()
}
