// Package guard decides, per request, whether to admit or redirect based on
// the system setup state and session validity. It holds no state of its own;
// the decision is recomputed from scratch on every request.
package guard

import "strings"

const (
	HomePath  = "/"
	LoginPath = "/login"
	SetupPath = "/setup"
)

// exempt paths bypass the page flow: the API namespace enforces its own
// session checks and static assets must load on the setup and login pages.
var exemptPrefixes = []string{"/api/", "/assets/"}

var exemptExact = map[string]bool{
	"/metrics":     true,
	"/favicon.ico": true,
}

type Action int

const (
	Allow Action = iota
	Redirect
)

type Decision struct {
	Action Action
	// Target is the redirect location when Action is Redirect.
	Target string
}

func allow() Decision             { return Decision{Action: Allow} }
func redirect(to string) Decision { return Decision{Action: Redirect, Target: to} }

// Decide applies the decision table in order. hasAny reports whether any
// credential record exists; username is the identity resolved from the
// session cookie, empty when there is no valid session.
func Decide(hasAny bool, username, path string) Decision {
	if isExempt(path) {
		return allow()
	}
	if !hasAny {
		// First run: everything funnels into setup.
		if path == SetupPath {
			return allow()
		}
		return redirect(SetupPath)
	}
	// A user exists: setup is permanently closed.
	if path == SetupPath {
		return redirect(HomePath)
	}
	if username == "" && path != LoginPath {
		return redirect(LoginPath)
	}
	if username != "" && path == LoginPath {
		return redirect(HomePath)
	}
	return allow()
}

func isExempt(path string) bool {
	if exemptExact[path] {
		return true
	}
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
