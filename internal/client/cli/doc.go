// Package cli provides the interactive tubeboost terminal client.
//
// It wires the session store, the route table, and the screens into a
// REPL. On start the client refreshes a rehydrated session once; if the
// backend rejects it the shell opens on the login screen.
//
// Commands
//
//	go <path>   open a screen (see "routes")
//	login       same as "go /login"
//	register    same as "go /register"
//	logout      end the session
//	whoami      show the signed-in user
//	routes      list screens
//	help        list commands
//	exit|quit   leave
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
