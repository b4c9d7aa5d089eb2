// Package cli implementa quotectl, la herramienta de línea de comandos para
// consultar cotizaciones y editar sus grillas contra la API.
package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jhoicas/Cotizaciones-api/internal/client"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// app estado compartido por los subcomandos.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	v        *viper.Viper
	cfgPath  string
	server   string
	debug    bool
	settings *Settings
	log      *logger.Logger
	client   *client.Client
}

// New construye el comando raíz con la entrada y salida estándar.
func New() *cobra.Command {
	return NewWithIO(os.Stdin, color.Output, os.Stderr)
}

// NewWithIO construye el comando raíz con entrada y salidas propias.
func NewWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, v: newViper()}

	cmd := &cobra.Command{
		Use:           "quotectl",
		Short:         "Cotizaciones de racks desde la terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "archivo de configuración (por defecto ~/.quotectl.yaml)")
	flags.StringVar(&a.server, "server", "", "URL de la API (sobrescribe la configuración)")
	flags.BoolVar(&a.debug, "debug", false, "log de depuración en stderr")

	addLogin(cmd, a)
	addParts(cmd, a)
	addQuote(cmd, a)
	addGrid(cmd, a)
	return cmd
}

func (a *app) setup() error {
	level := "warn"
	if a.debug {
		level = "debug"
	}
	a.log = logger.New(logger.Config{Env: "development", Level: level, Out: a.errOut})

	s, err := loadSettings(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	if a.server != "" {
		s.Server = a.server
	}
	a.settings = s

	c, err := client.New(s.Server, s.Token, s.Timeout)
	if err != nil {
		return err
	}
	a.client = c
	a.log.Debug().Str("server", s.Server).Bool("token", s.Token != "").Msg("quotectl configurado")
	return nil
}
