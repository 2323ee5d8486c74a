package script

import (
	"strconv"

	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/runner"
)

const loginURLVariable = "LOGIN_URL"

// LoginWorkflow builds the storefront login sequence from the configured
// selectors: open the login menu, choose the store account, clear the
// credential fields, submit and record the page URL as LOGIN_URL.
func LoginWorkflow(cfg config.AppConfigStorefront) *runner.Workflow {
	timeout := strconv.Itoa(cfg.ActionTimeout)
	sel := cfg.Selectors
	return &runner.Workflow{
		Version: "1",
		Name:    "login",
		Steps: []runner.ConfigurationWorkflow{
			{Index: 1, Action: "Click", Description: "open login menu", Params: []string{sel.LoginButton, timeout}},
			{Index: 2, Action: "WaitVisible", Description: "wait for account login option", Params: []string{sel.EpicLogin, timeout}},
			{Index: 3, Action: "Click", Description: "choose account login", Params: []string{sel.EpicLogin, timeout}},
			{Index: 4, Action: "WaitVisible", Description: "wait for login form", Params: []string{sel.EmailInput, timeout}},
			{Index: 5, Action: "Clear", Description: "clear email", Params: []string{sel.EmailInput, timeout}},
			{Index: 6, Action: "Clear", Description: "clear password", Params: []string{sel.PasswordInput, timeout}},
			{Index: 7, Action: "Click", Description: "submit login form", Params: []string{sel.SignInButton, timeout}},
			{Index: 8, Action: "GetURL", Description: "record page after submit", Result: loginURLVariable},
		},
	}
}

// loginWorkflow returns the configured workflow file, or the built-in sequence.
func loginWorkflow(cfg config.AppConfigStorefront) (*runner.Workflow, error) {
	if cfg.Workflow != "" {
		return runner.LoadWorkflow(cfg.Workflow)
	}
	return LoginWorkflow(cfg), nil
}
