package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasoft/shule/core/user"
	inmemdb "github.com/darasoft/shule/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	return &commandLine{
		db:      new(sqlx.DB),
		usrRepo: usrRepo,
	}
}

func createUser(t *testing.T, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		Email:     email,
		IsActive:  &isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	var gotArgs []string
	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		gotCommand = command
		gotArgs = args
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version", "fix":
			return nil
		default:
			return fmt.Errorf("%q: no such command", command)
		}
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
				return
			}
			if gotCommand != tt.args[1] {
				t.Errorf("migrate command = %s; want %s", gotCommand, tt.args[1])
			}
			if len(gotArgs) != len(tt.args)-2 {
				t.Errorf("migrate args = %v; want %v", gotArgs, tt.args[2:])
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := createUser(t, "awe", "awe@test.cd", "mdr", nil, false)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("S3cr3t!Pwd"), nil }

	t.Run("creates admin user", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", "boss", "-email", "boss@test.cd", "-admin"}); err != nil {
			t.Fatalf("cli.run(): %v", err)
		}

		usr, err := usrRepo.GetUserByUsername(context.Background(), "boss")
		if err != nil {
			t.Fatalf("GetUserByUsername(): %v", err)
		}
		if !usr.IsAdmin() {
			t.Errorf("roles = %v; want all roles", usr.Roles)
		}
		if usr.CheckPassword("S3cr3t!Pwd") != nil {
			t.Error("password not set")
		}
		if usr.IsActive == nil || !*usr.IsActive {
			t.Error("user not active")
		}
	})

	t.Run("updates and reactivates existing user", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", existing.Username}); err != nil {
			t.Fatalf("cli.run(): %v", err)
		}

		usr, err := usrRepo.GetUserByID(context.Background(), existing.ID)
		if err != nil {
			t.Fatalf("GetUserByID(): %v", err)
		}
		if usr.CheckPassword("S3cr3t!Pwd") != nil {
			t.Error("password not updated")
		}
		if usr.IsActive == nil || !*usr.IsActive {
			t.Error("user not reactivated")
		}
	})

	t.Run("missing username and email", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})
}
