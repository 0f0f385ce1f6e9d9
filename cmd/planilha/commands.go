package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/atendimento/internal/app"
	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/profile"
	"github.com/gestaozabele/atendimento/internal/util"
)

type opener func(ctx context.Context) (*app.App, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "planilha",
		Short:         "Manutenção das abas do painel de demandas",
		SilenceUsage: true,
	}

	root.AddCommand(
		newInitCmd(open),
		newCollaboratorCmd(open),
		newPasswordCmd(open),
		newHashCmd(),
	)
	return root
}

// withApp abre as dependências e garante o fechamento ao final do comando.
func withApp(cmd *cobra.Command, open opener, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newInitCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Cria os cabeçalhos das abas Perfil e Registro de Demandas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if err := a.EnsureSchema(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cabeçalhos prontos")
				return nil
			})
		},
	}
}

func newCollaboratorCmd(open opener) *cobra.Command {
	parent := &cobra.Command{
		Use:     "colaborador",
		Aliases: []string{"perfil"},
		Short:   "Gerencia os perfis de atendimento",
	}

	var admin bool
	create := &cobra.Command{
		Use:   "criar <nome> <ramal>",
		Short: "Cadastra ou reativa um perfil",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := auth.RoleCollaborator
			if admin {
				role = auth.RoleAdmin
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if err := a.Profiles.EnsureSchema(ctx); err != nil {
					return err
				}
				p, err := a.Profiles.Create(ctx, profile.NewProfile{Name: args[0], Extension: args[1], Role: role})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "perfil %s (%s) ativo\n", p.Name, p.Role)
				return nil
			})
		},
	}
	create.Flags().BoolVar(&admin, "admin", false, "cria o perfil com papel admin")

	list := &cobra.Command{
		Use:   "listar",
		Short: "Lista todos os perfis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				profiles, err := a.Profiles.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NOME\tRAMAL\tPAPEL\tATIVO\tSENHA")
				for _, p := range profiles {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", p.Name, p.Extension, p.Role, p.Active, p.PasswordHash != "")
				}
				return tw.Flush()
			})
		},
	}

	deactivate := &cobra.Command{
		Use:   "desativar <nome>",
		Short: "Desativa um perfil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if err := a.Profiles.Deactivate(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "perfil %s desativado\n", args[0])
				return nil
			})
		},
	}

	parent.AddCommand(create, list, deactivate)
	return parent
}

func newPasswordCmd(open opener) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "senha <nome>",
		Short: "Define a senha de um perfil ativo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("informe --senha")
			}
			if err := util.ValidatePassword(password); err != nil {
				return err
			}
			hash, err := auth.Hash(password)
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if err := a.Profiles.SetPassword(ctx, args[0], hash); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "senha de %s atualizada\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "senha", "", "nova senha (mínimo 8 caracteres)")
	return cmd
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <senha>",
		Short: "Gera o hash argon2id para gravar direto na coluna Senha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
