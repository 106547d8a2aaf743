package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/atotto/clipboard"
	"github.com/otiai10/copy"
	"github.com/spf13/cobra"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/core"
	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	"github.com/interactive-sql-tutor/sqltutor/internal/markdown"
	"github.com/interactive-sql-tutor/sqltutor/internal/server"
	"github.com/interactive-sql-tutor/sqltutor/internal/stopwatch"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
	"github.com/interactive-sql-tutor/sqltutor/internal/upload"
	"github.com/interactive-sql-tutor/sqltutor/internal/util"
	"github.com/interactive-sql-tutor/sqltutor/internal/validate"
)

func requireLogin(app *core.App) error {
	if !app.HasCredentials() {
		return errors.New(i18n.T("cli_not_logged_in"))
	}
	return nil
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web client on localhost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(func(app *core.App) error {
				addr := app.Config.Listen
				if listen != "" {
					addr = listen
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(cmd.OutOrStdout(), i18n.T("cli_serving")+"\n", addr)
				return server.New(app).Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides config)")
	return cmd
}

func newLoginCommand(flags *globalFlags) *cobra.Command {
	var form validate.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Login(form); err != nil {
				return err
			}
			return flags.withApp(func(app *core.App) error {
				if err := app.Session.Login(cmd.Context(), form.Email, form.Password); err != nil {
					return errors.New(api.Message(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", i18n.T("login_success"), app.Session.Snapshot().Profile.Name())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	return cmd
}

func newLogoutCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(func(app *core.App) error {
				if err := app.Session.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("logout_success"))
				return nil
			})
		},
	}
}

func newSignupCommand(flags *globalFlags) *cobra.Command {
	var form validate.SignupForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Signup(form); err != nil {
				return err
			}
			return flags.withApp(func(app *core.App) error {
				if _, err := app.API.Register(cmd.Context(), api.RegisterRequest{
					Name:           form.Name,
					Email:          form.Email,
					Password:       form.Password,
					VerifyPassword: form.VerifyPassword,
				}); err != nil {
					return errors.New(api.Message(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("signup_success"))

				if err := app.Session.Login(cmd.Context(), form.Email, form.Password); err != nil {
					return errors.New(api.Message(err))
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "display name")
	f.StringVar(&form.Email, "email", "", "account email")
	f.StringVar(&form.Password, "password", "", "account password")
	f.StringVar(&form.VerifyPassword, "verify-password", "", "repeat the password")
	return cmd
}

func newProblemsCommand(flags *globalFlags) *cobra.Command {
	var filter domain.ProblemFilter
	cmd := &cobra.Command{
		Use:   "problems",
		Short: "List problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(func(app *core.App) error {
				problems, err := app.API.ListProblems(cmd.Context(), filter)
				if err != nil {
					return errors.New(api.Message(err))
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tTOPIC\tDIFFICULTY\tACCEPTANCE")
				for _, p := range problems {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						p.ProblemID, p.Title, p.Topic, p.DifficultyLevel, domain.FormatAcceptance(p.Acceptance))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter.Topic, "topic", "", "only problems of this topic ("+strings.Join(domain.Topics, ", ")+")")
	cmd.Flags().StringVar(&filter.Difficulty, "difficulty", "", "only problems of this difficulty ("+strings.Join(domain.Difficulties, ", ")+")")
	return cmd
}

func newAttemptsCommand(flags *globalFlags) *cobra.Command {
	var problem int
	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Show your attempts at a problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(func(app *core.App) error {
				if err := requireLogin(app); err != nil {
					return err
				}
				attempts, err := app.API.AttemptHistory(cmd.Context(), problem)
				if err != nil {
					return errors.New(api.Message(err))
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SUBMITTED\tSTATUS\tSCORE\tTIME\tHINTS")
				for _, a := range attempts {
					fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%d\n",
						a.SubmissionDate, a.Status, a.Score, stopwatch.Format(a.TimeTaken), a.HintsUsed)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&problem, "problem", 0, "problem id")
	_ = cmd.MarkFlagRequired("problem")
	return cmd
}

type submitOptions struct {
	problem  int
	file     string
	edit     bool
	remember bool
}

func newSubmitCommand(flags *globalFlags) *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a solution",
		Long: "Submit a solution read from --file, written in $EDITOR with --edit, " +
			"or taken from the remembered file or the saved draft of the problem.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(func(app *core.App) error {
				if err := requireLogin(app); err != nil {
					return err
				}
				solution, seconds, err := opts.solution(cmd, app)
				if err != nil {
					return err
				}

				result, err := app.API.SubmitAttempt(cmd.Context(), opts.problem, api.AttemptRequest{
					UserQuery: solution,
					TimeTaken: seconds,
				})
				if err != nil {
					return errors.New(api.Message(err))
				}
				if !result.Passed() {
					return errors.New(result.Feedback)
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("submit_passed"))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.problem, "problem", 0, "problem id")
	f.StringVar(&opts.file, "file", "", "file holding the SQL solution")
	f.BoolVar(&opts.edit, "edit", false, "write the solution in $EDITOR, starting from the saved draft")
	f.BoolVar(&opts.remember, "remember", false, "use --file for this problem from now on")
	_ = cmd.MarkFlagRequired("problem")
	cmd.MarkFlagsMutuallyExclusive("file", "edit")
	return cmd
}

// solution picks the text to submit and the seconds spent writing it.
func (o *submitOptions) solution(cmd *cobra.Command, app *core.App) (ret string, seconds int, err error) {
	dataDir := app.Config.DataDir
	switch {
	case o.file != "":
		if ret, err = readText(o.file); err != nil {
			return
		}
		if o.remember {
			err = rememberSolutionFile(dataDir, o.problem, o.file)
		}
		return

	case o.edit:
		draft, _, _ := app.Store.Get(store.DraftKey(o.problem))
		timer := stopwatch.New(time.Now)
		timer.Start()
		if ret, err = editText(cmd.Context(), draft, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
			return
		}
		timer.Pause()
		seconds = timer.Seconds()
		err = app.Store.Set(store.DraftKey(o.problem), ret)
		return
	}

	var files map[int]string
	if files, err = loadSolutionFiles(dataDir); err != nil {
		return
	}
	if path, ok := files[o.problem]; ok {
		ret, err = readText(path)
		return
	}

	var found bool
	if ret, found, err = app.Store.Get(store.DraftKey(o.problem)); err != nil {
		return
	}
	if !found || strings.TrimSpace(ret) == "" {
		err = fmt.Errorf(i18n.T("cli_no_solution"), o.problem)
	}
	return
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newUploadCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload METADATA PROBLEM SOLUTION",
		Short: "Upload a new problem (instructors)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bundle upload.Bundle
			var err error
			if bundle.Metadata, err = upload.ReadFile(args[0]); err != nil {
				return err
			}
			if bundle.Problem, err = upload.ReadFile(args[1]); err != nil {
				return err
			}
			if bundle.Solution, err = upload.ReadFile(args[2]); err != nil {
				return err
			}
			if err = bundle.Check(); err != nil {
				return err
			}

			return flags.withApp(func(app *core.App) error {
				if err := requireLogin(app); err != nil {
					return err
				}
				if err := app.API.UploadProblem(cmd.Context(), bundle); err != nil {
					return errors.New(api.Message(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("upload_success"))
				return nil
			})
		},
	}
}

type queryOptions struct {
	file     string
	generate string
	copy     bool
	schemas  bool
}

func newQueryCommand(flags *globalFlags) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run or generate an analytics query (instructors)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(app *core.App) error {
				if err := requireLogin(app); err != nil {
					return err
				}
				switch {
				case opts.schemas:
					return opts.printSchemas(cmd, app)
				case opts.generate != "":
					return opts.runGenerate(cmd, app)
				}

				query := ""
				if len(args) == 1 {
					query = args[0]
				} else if opts.file != "" {
					var err error
					if query, err = readText(opts.file); err != nil {
						return err
					}
				}
				if strings.TrimSpace(query) == "" {
					return errors.New(i18n.T("cli_query_required"))
				}
				return runQuery(cmd, app, query)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "read the query from a file")
	f.StringVarP(&opts.generate, "generate", "g", "", "describe the data and get a generated query")
	f.BoolVar(&opts.copy, "copy", false, "copy the generated query to the clipboard")
	f.BoolVar(&opts.schemas, "schemas", false, "list the tables you may query")
	return cmd
}

func runQuery(cmd *cobra.Command, app *core.App, query string) error {
	result, err := app.API.RunQuery(cmd.Context(), query)
	if err != nil {
		return errors.New(api.Message(err))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, domain.CellString(cell))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func (o *queryOptions) runGenerate(cmd *cobra.Command, app *core.App) error {
	answer, err := app.API.GenerateQuery(cmd.Context(), o.generate)
	if err != nil {
		return errors.New(api.Message(err))
	}
	text, err := markdown.ToPlainText(answer)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if o.copy {
		if err := clipboard.WriteAll(text); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli_copied"))
	}
	return nil
}

func (o *queryOptions) printSchemas(cmd *cobra.Command, app *core.App) error {
	schemas, err := app.API.AllowedSchemas(cmd.Context())
	if err != nil {
		return errors.New(api.Message(err))
	}
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
		for _, col := range schemas[name] {
			fmt.Fprintf(out, "  %s %s\n", col.Name, col.Type)
		}
	}
	return nil
}

func newSolutionsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solutions",
		Short: "List the solution files remembered by submit --remember",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSolutionFiles(cmd.OutOrStdout(), flags.cfg.DataDir)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "forget PROBLEM",
		Short: "Stop using a remembered solution file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseProblemID(args[0])
			if err != nil {
				return err
			}
			return forgetSolutionFile(flags.cfg.DataDir, id)
		},
	})
	return cmd
}

func newBackupCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "backup DEST",
		Short: "Copy the local storage (session, drafts, remembered files) to DEST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := util.GetAbsolutePath(args[0])
			if err != nil {
				return err
			}
			if err = copy.Copy(flags.cfg.DataDir, dest, copy.Options{
				Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
					return strings.HasSuffix(src, "-shm"), nil
				},
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), i18n.T("cli_backup_done")+"\n", dest)
			return nil
		},
	}
}
