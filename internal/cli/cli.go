// Package cli is the sqltutor command line: the local web client plus a few
// terminal shortcuts sharing its stored session and drafts.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/interactive-sql-tutor/sqltutor/internal/config"
	"github.com/interactive-sql-tutor/sqltutor/internal/core"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/util"
)

type globalFlags struct {
	configPath string
	apiURL     string
	dataDir    string
	language   string
	debug      int

	cfg *config.Config
}

// Cli runs the command line with the process arguments.
func Cli(version string) error {
	return NewRootCommand(version).Execute()
}

func NewRootCommand(version string) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "sqltutor",
		Short:         "Practice SQL against the tutor platform",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			flags.cfg, err = flags.loadConfig(cmd)
			return
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config.yaml")
	pf.StringVar(&flags.apiURL, "api-url", "", "platform API base URL")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory holding the local storage")
	pf.StringVar(&flags.language, "lang", "", "message language (en, es)")
	pf.IntVar(&flags.debug, "debug", 0, "debug level: 0=off 1=basic 2=detailed 3=trace 4=wire")

	root.AddCommand(
		newServeCommand(flags),
		newLoginCommand(flags),
		newLogoutCommand(flags),
		newSignupCommand(flags),
		newProblemsCommand(flags),
		newAttemptsCommand(flags),
		newSubmitCommand(flags),
		newUploadCommand(flags),
		newQueryCommand(flags),
		newSolutionsCommand(flags),
		newBackupCommand(flags),
	)
	return root
}

// loadConfig applies the global flags over the file and environment settings.
func (o *globalFlags) loadConfig(cmd *cobra.Command) (ret *config.Config, err error) {
	if _, err = i18n.Init(o.language); err != nil {
		return
	}
	if ret, err = config.Load(o.configPath); err != nil {
		return
	}

	changed := cmd.Flags().Changed
	if changed("api-url") {
		ret.APIURL = o.apiURL
	}
	if changed("data-dir") {
		if ret.DataDir, err = util.GetAbsolutePath(o.dataDir); err != nil {
			return
		}
	}
	if changed("debug") {
		ret.Debug = o.debug
	}
	if changed("lang") {
		ret.Language = o.language
	} else if _, err = i18n.Init(ret.Language); err != nil {
		return
	}
	if err = ret.Validate(); err != nil {
		return
	}

	debuglog.SetLevel(debuglog.LevelFromInt(ret.Debug))
	return
}

// withApp opens the app for the duration of fn.
func (o *globalFlags) withApp(fn func(app *core.App) error) error {
	app, err := core.New(o.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			debuglog.Log("closing storage: %v\n", cerr)
		}
	}()
	return fn(app)
}
