package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasoft/shule/core"
	"github.com/darasoft/shule/core/user"
)

// addUser updates or creates a user.User.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	lookup := uname
	if lookup == "" {
		lookup = email
	}

	var exists bool
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, lookup)
	switch errors.Cause(err) {
	case nil:
		exists = true
	case user.ErrNotFound:
		now := time.Now().UTC()
		active := true
		usr = user.User{
			Username:  uname,
			Email:     email,
			IsActive:  &active,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return err
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		active := true
		usr.UpdatedAt = time.Now().UTC()
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
