package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/piresc/authgate/internal/pkg/config"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/services/auth/gateway"
	gateway_http "github.com/piresc/authgate/services/auth/gateway/http"
	"github.com/piresc/authgate/services/auth/usecase"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		envFile    = flag.String("env", "config/authgate.env", "dotenv file loaded when APP_ENV=local")
		apiURL     = flag.String("api", "", "auth API base URL (overrides AUTH_API_URL)")
		signup     = flag.Bool("signup", false, "create an account instead of signing in")
		credential = flag.String("google-credential", "", "sign in with a Google ID token")
		logout     = flag.Bool("logout", false, "end the current session")
		whoami     = flag.Bool("whoami", false, "print the current session and exit")
		logLevel   = flag.String("log-level", "warn", "log level")
		logFile    = flag.String("log-file", "", "write logs to this file instead of stderr")
	)
	flag.Parse()

	configs := config.InitConfig(*envFile)
	if *apiURL != "" {
		configs.Backend.BaseURL = *apiURL
	}

	zapLogger, err := logger.NewZapLogger(logger.ZapConfig{
		Level:    *logLevel,
		FilePath: *logFile,
		Service:  "signin",
		Console:  os.Stderr,
		Quiet:    *logFile != "",
	})
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One process is one visitor; cookies live in memory for the run
	jar := gateway_http.NewMemoryJar()
	transport := gateway.NewTransportFactory(configs.Backend, func(string) http.CookieJar {
		return jar
	})("cli")

	session := usecase.NewSessionContext(transport, nil)
	flow := usecase.NewFlowController(transport, session, usecase.FlowOptions{
		LandingPath:    configs.Flow.LandingPath,
		GoogleClientID: configs.Flow.GoogleClientID,
		VisitorID:      "cli",
		Events:         gateway.NewEventPublisher(nil, nil),
	})
	w := newWizard(flow, os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		w.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}

	current := session.CheckAuth(ctx)
	switch {
	case *whoami:
		w.printSession(current)
		return 0
	case *logout:
		after, err := session.Logout(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Logout failed, run again to retry: %v\n", err)
			return 1
		}
		w.printSession(after)
		return 0
	case current.IsAuthenticated:
		w.printSession(current)
		return 0
	}

	collect, retry := w.credentials, true
	switch {
	case *credential != "":
		collect, retry = w.google(*credential), false
	case *signup:
		collect = w.signup
	}

	if err := w.run(ctx, collect, retry); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	final := flow.State()
	w.printSession(session.Snapshot())
	if final.Redirect != "" {
		fmt.Fprintf(os.Stdout, "Continue at %s\n", final.Redirect)
	}

	logger.Debug("Sign-in finished",
		logger.String("phase", string(final.Phase)),
		logger.Bool("remember_me", final.RememberMe))

	// the backend accepted the flow but the session did not stick
	if !session.Snapshot().IsAuthenticated {
		return 2
	}
	return 0
}
