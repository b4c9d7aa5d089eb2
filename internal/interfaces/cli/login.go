package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func addLogin(root *cobra.Command, a *app) {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión y guarda el token en la configuración",
		Example: `
quotectl login --email ana@racks.co
echo "$CLAVE" | quotectl login --email ana@racks.co
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return fmt.Errorf("--email es requerido")
			}
			if password == "" {
				_, _ = fmt.Fprint(a.errOut, "Contraseña: ")
				line, err := bufio.NewReader(a.in).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("leer contraseña: %w", err)
				}
				password = strings.TrimSpace(line)
			}
			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			file, err := saveToken(a.v, a.cfgPath, a.settings.Server, res.Token)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "%s %s (%s)\n", green("Sesión iniciada como"), res.User.Email, res.User.Role)
			a.log.Debug().Str("file", file).Time("expires_at", res.ExpiresAt).Msg("token guardado")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "correo del usuario")
	cmd.Flags().StringVar(&password, "password", "", "contraseña (si se omite se lee de stdin)")
	root.AddCommand(cmd)
}
