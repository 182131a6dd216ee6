/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/vault"
	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/internal/notification"
)

// CLI wraps the root cobra command.
type CLI struct {
	cmd *cobra.Command
}

// vaultInstance is filled in by preRun and shared by every subcommand.
type vaultInstance struct {
	vault *vault.Vault
	cnf   *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the Vault before any command runs.
func preRun(app *vaultInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			return errors.Wrap(err, "error loading config")
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newVault, err := setupVault(cnf)
		if err != nil {
			notification.NotifyError(err)
			return err
		}

		app.vault = newVault
		app.cnf = cnf
		return nil
	}
}

func setupVault(cfg *config.Configuration) (*vault.Vault, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "error getting datasource")
	}

	newVault, err := vault.NewVault(db)
	if err != nil {
		return nil, errors.Wrap(err, "error creating vault")
	}
	return newVault, nil
}

func NewCLI() *CLI {
	var configFile string
	v := &vaultInstance{}

	rootCmd := &cobra.Command{
		Use:   "vault",
		Short: "Account ledger with locked balance movements",
		Run:   func(cmd *cobra.Command, args []string) {},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if v.vault != nil {
				_ = v.vault.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./vault.json", "Configuration file for vault")
	rootCmd.PersistentPreRunE = preRun(v, &configFile)

	rootCmd.AddCommand(serverCommands(v))
	rootCmd.AddCommand(workerCommands(v))
	rootCmd.AddCommand(migrateCommands(v))
	rootCmd.AddCommand(backupCommands(v))
	rootCmd.AddCommand(configCommands())

	return &CLI{cmd: rootCmd}
}

func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
