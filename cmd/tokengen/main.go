// Command tokengen mints HS256 access tokens in the identity provider's
// format for local development and manual testing.
//
//	tokengen -sub user-1 -role USER
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()

	sub := flag.String("sub", "", "subject (user or professional id)")
	role := flag.String("role", string(model.RoleUser), "USER, VENDOR or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret (defaults to $JWT_SECRET)")
	flag.Parse()

	if *sub == "" || *secret == "" {
		flag.Usage()
		os.Exit(2)
	}
	r := model.Role(strings.ToUpper(*role))
	switch r {
	case model.RoleUser, model.RoleVendor, model.RoleAdmin:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	tok, err := utils.NewAccessToken(*secret, *sub, string(r), *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok.Token)
}
