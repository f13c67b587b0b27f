package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-operations/internal/application/dto"
	appop "github.com/jhoicas/stock-operations/internal/application/operation"
	"github.com/jhoicas/stock-operations/internal/domain/repository"
	"github.com/jhoicas/stock-operations/internal/infrastructure/rest"
	"github.com/jhoicas/stock-operations/pkg/config"
	"github.com/jhoicas/stock-operations/pkg/logger"
)

// version se sobrescribe en el build con -ldflags.
var version = "dev"

// errInvalidOperation la operación tiene errores de campo; el detalle ya se imprimió.
var errInvalidOperation = errors.New("la operación no es válida")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errInvalidOperation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run ejecuta la línea de comandos con la salida indicada.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app casos de uso construidos a partir de la configuración y los flags.
type app struct {
	submit   *appop.SubmitOperationUseCase
	rollback *appop.RollbackUseCase
	query    *appop.QueryUseCase
	cache    *appop.ReferenceCache
}

type rootFlags struct {
	storeURL string
	user     string
	password string
	timeout  time.Duration
	logLevel string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		flags rootFlags
		a     app
	)
	root := &cobra.Command{
		Use:           "stockopctl",
		Short:         "Valida, envía y revierte operaciones de stock contra el almacén remoto",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := buildApp(cmd, flags, stderr)
			if err != nil {
				return err
			}
			a = *built
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.storeURL, "store-url", "", "URL base del almacén (por defecto STORE_BASE_URL)")
	pf.StringVar(&flags.user, "user", "", "usuario del almacén (por defecto STORE_USERNAME)")
	pf.StringVar(&flags.password, "password", "", "contraseña del almacén (por defecto STORE_PASSWORD)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "timeout por petición (por defecto STORE_TIMEOUT_SECONDS)")
	pf.StringVar(&flags.logLevel, "log-level", "", "nivel de log (por defecto LOG_LEVEL)")

	root.AddCommand(
		newValidateCmd(&a, stdout),
		newSubmitCmd(&a, stdout),
		newGetCmd(&a, stdout),
		newRollbackCmd(&a, stdout),
		newCancelCmd(&a, stdout),
		newReferencesCmd(&a, stdout),
	)
	return root
}

// buildApp carga la configuración, aplica los flags explícitos y arma los casos de uso.
func buildApp(cmd *cobra.Command, flags rootFlags, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	pf := cmd.Flags()
	if pf.Changed("store-url") {
		cfg.Store.BaseURL = strings.TrimRight(flags.storeURL, "/")
	}
	if pf.Changed("user") {
		cfg.Store.Username = flags.user
	}
	if pf.Changed("password") {
		cfg.Store.Password = flags.password
	}
	if pf.Changed("timeout") {
		cfg.Store.Timeout = flags.timeout
	}
	if pf.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(stderr, cfg.Log.Level)
	store := rest.NewClient(cfg.Store, cfg.Breaker, log, nil)
	ops := rest.NewStockOperationRepository(store, log)
	cache := appop.NewReferenceCache(rest.NewReferenceRepository(store), rest.NewOperationTypeRepository(store),
		cfg.Reference.TTL, appop.NewLogErrorHandler(log), log, nil)

	return &app{
		submit:   appop.NewSubmitOperationUseCase(ops, cache, log, nil),
		rollback: appop.NewRollbackUseCase(ops, nil, log, nil),
		query:    appop.NewQueryUseCase(ops),
		cache:    cache,
	}, nil
}

// readRequest lee un OperationRequest JSON desde path ("-" = stdin).
func readRequest(cmd *cobra.Command, path string) (dto.OperationRequest, error) {
	var in dto.OperationRequest
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return in, err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("leer %s: %w", path, err)
	}
	return in, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd(a *app, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Valida una operación sin guardarla",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readRequest(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			op, attrErrs, err := a.submit.BuildOperation(ctx, in)
			if err != nil {
				return err
			}
			errs := appop.ToFieldErrorDTOs(a.submit.CheckOperation(ctx, op, attrErrs))
			if err := printJSON(stdout, dto.ValidationResponse{Valid: len(errs) == 0, Errors: errs}); err != nil {
				return err
			}
			if len(errs) > 0 {
				return errInvalidOperation
			}
			return nil
		},
	}
}

func newSubmitCmd(a *app, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "submit FILE",
		Short: "Valida y envía una operación al almacén",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readRequest(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			op, attrErrs, err := a.submit.BuildOperation(ctx, in)
			if err != nil {
				return err
			}
			if len(attrErrs) > 0 {
				errs := appop.ToFieldErrorDTOs(a.submit.CheckOperation(ctx, op, attrErrs))
				_ = printJSON(stdout, dto.ValidationResponse{Errors: errs})
				return errInvalidOperation
			}
			saved, fieldErrs, err := a.submit.SubmitOperation(ctx, op)
			if err != nil {
				return err
			}
			if len(fieldErrs) > 0 {
				_ = printJSON(stdout, dto.ValidationResponse{Errors: appop.ToFieldErrorDTOs(fieldErrs)})
				return errInvalidOperation
			}
			return printJSON(stdout, appop.ToOperationResponse(saved))
		},
	}
}

func newGetCmd(a *app, stdout io.Writer) *cobra.Command {
	var withTx bool
	cmd := &cobra.Command{
		Use:   "get UUID",
		Short: "Muestra una operación",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.query.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if withTx {
				txs, err := a.query.Transactions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(stdout, map[string]any{"operation": out, "transactions": txs})
			}
			return printJSON(stdout, out)
		},
	}
	cmd.Flags().BoolVar(&withTx, "transactions", false, "incluye reservas y transacciones")
	return cmd
}

func newRollbackCmd(a *app, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback UUID",
		Short: "Revierte una operación COMPLETED",
		Long: "Solicita el rollback y espera la respuesta del almacén antes de salir. " +
			"La solicitud se acepta en cuanto pasa la comprobación de estado.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var failed error
			err := a.rollback.Rollback(ctx, args[0],
				func(id string) { fmt.Fprintf(stdout, "rollback solicitado: %s\n", id) },
				func(err error) { failed = err },
			)
			if err != nil {
				return err
			}
			if err := a.rollback.Wait(ctx); err != nil {
				return err
			}
			return failed
		},
	}
}

func newCancelCmd(a *app, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel UUID",
		Short: "Cancela una operación NEW o PENDING",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.submit.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(stdout, appop.ToOperationResponse(op))
		},
	}
}

func newReferencesCmd(a *app, stdout io.Writer) *cobra.Command {
	kinds := make([]string, 0, len(repository.ReferenceKinds))
	for _, k := range repository.ReferenceKinds {
		kinds = append(kinds, string(k))
	}
	return &cobra.Command{
		Use:       "references KIND",
		Short:     "Lista una colección de referencia",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := repository.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			refs, err := a.cache.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			return printJSON(stdout, appop.ToReferenceList(string(kind), refs))
		},
	}
}
