package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"researchnest/internal/service"
)

var (
	exportOutput string
	importInput  string
	importClear  bool
	assumeYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath := exportOutput
		if outputPath == "" {
			outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outputPath, err)
		}
		defer f.Close()

		log.Printf("Exporting database to: %s", outputPath)
		data, err := service.NewBackupService(db).Export(f)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		log.Printf("Export complete! %d families, %d users, %d projects", len(data.Families), len(data.Users), len(data.Projects))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup into the database",
	Long:  "Imports a backup produced by export. With --clear every existing row is deleted first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importInput)
		if err != nil {
			return fmt.Errorf("failed to open backup: %w", err)
		}
		defer f.Close()

		if importClear && !assumeYes {
			fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				log.Println("Import cancelled")
				return nil
			}
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		log.Printf("Importing database from: %s", importInput)
		data, err := service.NewBackupService(db).Import(f, importClear)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		log.Printf("Import complete! %d families, %d users, %d projects", len(data.Families), len(data.Users), len(data.Projects))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVarP(&importInput, "in", "i", "", "Backup file to import")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "Clear existing data before import (destructive)")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	importCmd.MarkFlagRequired("in")
}
