package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-identity/config"
	"github.com/oksasatya/go-user-identity/internal/container"
	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
	"github.com/oksasatya/go-user-identity/internal/router"
	"github.com/oksasatya/go-user-identity/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Close()
	svc := router.BuildService(c)

	street, number, city, state, cep := "Praça da Sé", int64(1), "São Paulo", "SP", "01001-000"
	number2, ddd := "999990000", "011"
	email := "demo@usuario.dev"
	password := "password123"

	u, err := svc.Register(ctx, entity.NewUser{
		Name:      "Demo User",
		Email:     email,
		Password:  password,
		Addresses: []entity.AddressPatch{{Street: &street, Number: &number, City: &city, State: &state, PostalCode: &cep}},
		Phones:    []entity.PhonePatch{{Number: &number2, AreaCode: &ddd}},
	})
	switch {
	case domerrors.IsConflict(err):
		fmt.Printf("user %s already seeded\n", email)
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d email=%s password=%s addresses=%d phones=%d\n",
		u.ID, u.Email, password, len(u.Addresses), len(u.Phones))
}
