package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/store"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/tui"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Manage the company catalog",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all companies in the store",
	RunE:  runCompaniesList,
}

var newCompany model.Company

var companiesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a company to the store",
	RunE:  runCompaniesAdd,
}

var companiesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a company from the store",
	Long:  "Deletes the company with the given ID. Without an ID an interactive picker is shown.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompaniesDelete,
}

var companiesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import companies from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesImport,
}

func init() {
	f := companiesAddCmd.Flags()
	f.StringVar(&newCompany.ID, "id", "", "company ID (default: generated)")
	f.StringVar(&newCompany.Name, "name", "", "company name")
	f.StringVar(&newCompany.Industry, "industry", "", "industry")
	f.StringVar(&newCompany.Location, "location", "", "headquarters location")
	f.StringVar(&newCompany.Revenue, "revenue", "", "annual revenue, e.g. \"$12M\"")
	f.IntVar(&newCompany.Employees, "employees", 0, "employee count")
	f.StringVar(&newCompany.Description, "description", "", "short description")
	f.StringSliceVar(&newCompany.Strengths, "strength", nil, "strength (repeatable)")
	f.StringSliceVar(&newCompany.Challenges, "challenge", nil, "challenge (repeatable)")

	companiesCmd.AddCommand(companiesListCmd, companiesAddCmd, companiesDeleteCmd, companiesImportCmd)
	rootCmd.AddCommand(companiesCmd)
}

func openCatalog() (*store.SQLiteStore, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}

func runCompaniesList(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	companies, err := s.List(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%-36s  %-25s %-18s %-15s %s\n", "ID", "Company", "Industry", "Location", "Revenue")
	fmt.Println(strings.Repeat("─", 108))
	for _, c := range companies {
		fmt.Printf("%-36s  %-25s %-18s %-15s %s\n", c.ID, truncate(c.Name, 25), truncate(c.Industry, 18), truncate(c.Location, 15), c.Revenue)
	}

	fmt.Printf("\nTotal: %d companies\n", len(companies))
	return nil
}

func runCompaniesAdd(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	added, err := s.Add(cmd.Context(), newCompany)
	if err != nil {
		return fmt.Errorf("add company: %w", err)
	}
	fmt.Printf("Added %s (%s)\n", added.Name, added.ID)
	return nil
}

func runCompaniesDelete(cmd *cobra.Command, args []string) error {
	s, err := openCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		companies, err := s.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Println("No companies in the store.")
			return nil
		}
		choice, err := tui.RunCompanyPicker("Delete company: select a company", companies)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		id = companies[choice].ID
	}

	if err := s.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, model.ErrCompanyNotFound) {
			return fmt.Errorf("no company with id %q", id)
		}
		return err
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

func runCompaniesImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	companies, err := store.ReadCompanies(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	s, err := openCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	n, err := store.Import(cmd.Context(), s, companies)
	fmt.Printf("Imported %d of %d companies\n", n, len(companies))
	return err
}
