package main

import (
	"context"
	"errors"
	"fmt"

	"toolhub/internal/client"
	"toolhub/internal/model"
)

func (a *app) signup(ctx context.Context, req model.SignupRequest) error {
	resp, err := a.client.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	fmt.Fprintf(a.out, "Account %s created. Log in with: toolhub login --email %s\n", resp.User.Email, resp.User.Email)
	return nil
}

func (a *app) login(ctx context.Context, email, password string) error {
	session, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "login successful (role: %s)\n", session.Role)
	return nil
}

func (a *app) logout() error {
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) whoami() error {
	session, err := a.client.Session()
	if errors.Is(err, client.ErrNotLoggedIn) {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n", session.Email, session.Role)
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	dashboard, err := a.client.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", dashboard.User.FirstName)
	if dashboard.User.Role == model.RoleAdmin {
		fmt.Fprintln(a.out, "[Admin Panel] available for your account")
	}
	if len(dashboard.Tools) == 0 {
		fmt.Fprintln(a.out, "No tools available yet.")
		return nil
	}
	current := ""
	for _, tool := range dashboard.Tools {
		if tool.CategoryName != current {
			current = tool.CategoryName
			fmt.Fprintf(a.out, "\n%s\n", current)
		}
		fmt.Fprintf(a.out, "  %-24s [%s] %s\n", tool.Name, tool.Type, tool.URL)
		if tool.Description != "" {
			fmt.Fprintf(a.out, "      %s\n", tool.Description)
		}
	}
	return nil
}

func (a *app) tools(ctx context.Context) error {
	groups, err := a.client.PublicTools(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No tools available yet.")
		return nil
	}
	for _, group := range groups {
		fmt.Fprintln(a.out, group.CategoryName)
		for _, tool := range group.Tools {
			fmt.Fprintf(a.out, "  %-24s [%s] %s\n", tool.Name, tool.Type, tool.URL)
		}
	}
	return nil
}
