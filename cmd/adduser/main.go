package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"fintracker/config"
	"fintracker/internal/domain/entity"
	"fintracker/internal/infra/auth"
	logs "fintracker/internal/infra/log"
	"fintracker/internal/infra/persistence/postgres"
	"fintracker/internal/infra/pubsub"
	"fintracker/internal/usecase"
	"fintracker/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/term"
)

type registrar interface {
	Register(ctx context.Context, input *usecase.RegisterInput) (*entity.TokenPair, error)
}

// connectFunc returns a registrar and the function that releases it.
type connectFunc func(ctx context.Context) (registrar, func(context.Context) error, error)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, connect); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, connect connectFunc) error {
	cmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	cmd.SetOutput(stdout)
	email := cmd.String("email", "", "Email of the new user")
	firstName := cmd.String("first-name", "", "Given name")
	lastName := cmd.String("last-name", "", "Family name")

	if err := cmd.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse flags")
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("--email flag is required")
	}

	password, err := readPassword(stdin, stdout)
	if err != nil {
		return err
	}

	authUC, closeFn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeFn(context.Background())
	}()

	_, err = authUC.Register(ctx, &usecase.RegisterInput{
		Email:     strings.TrimSpace(*email),
		Password:  password,
		FirstName: *firstName,
		LastName:  *lastName,
		Client:    entity.ClientInfo{UserAgent: "adduser"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to register user")
	}

	fmt.Fprintf(stdout, "User %s created\n", strings.TrimSpace(*email))

	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stdout, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}

		return string(raw), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read password")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is empty")
	}

	return password, nil
}

// connect starts the same providers the API server uses, minus delivery.
func connect(ctx context.Context) (registrar, func(context.Context) error, error) {
	var authUC usecase.AuthUsecase

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
			pubsub.NewEventPublisher,
			postgres.NewUserRepository,
			postgres.NewTransactionManager,
			auth.NewPBKDF2Hasher,
			auth.NewJWTService,
			impl.NewAuthService,
		),
		fx.Populate(&authUC),
	)
	if err := app.Start(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "failed to start dependencies")
	}

	return authUC, app.Stop, nil
}
