package application

import "expvar"

// Published under /debug/vars.
var (
	registrations = expvar.NewInt("identity_registrations")
	logins        = expvar.NewInt("identity_logins")
	failedLogins  = expvar.NewInt("identity_failed_logins")
)
