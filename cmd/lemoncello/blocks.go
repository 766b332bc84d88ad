package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"lemoncello/app"
	"lemoncello/model"
	"lemoncello/store"
)

var blocksCmd = &cobra.Command{
	Use:     "blocks",
	Aliases: []string{"block"},
	Short:   "Manage the block library",
}

// blocks list
var blocksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List blocks in display order",
	Args:    cobra.NoArgs,
	RunE:    runBlocksList,
}

// blocks add
var blocksAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a block",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocksAdd,
}

// blocks rm
var blocksRmCmd = &cobra.Command{
	Use:     "rm <block>",
	Aliases: []string{"delete"},
	Short:   "Delete a block by name or id",
	Args:    cobra.ExactArgs(1),
	RunE:    runBlocksRm,
}

// blocks import
var blocksImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Append blocks from a YAML library file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocksImport,
}

// blocks export
var blocksExportCmd = &cobra.Command{
	Use:   "export [file.yaml]",
	Short: "Write the block library as YAML (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBlocksExport,
}

var (
	blockKind        string
	blockWork        int
	blockRest        int
	blockCycles      int
	blockIcon        string
	blockDescription string
)

func init() {
	blocksAddCmd.Flags().StringVarP(&blockKind, "kind", "k", string(model.KindPomodoro), "pomodoro, meeting, rest or custom")
	blocksAddCmd.Flags().IntVarP(&blockWork, "work", "w", 25, "work minutes")
	blocksAddCmd.Flags().IntVarP(&blockRest, "rest", "r", 5, "rest minutes")
	blocksAddCmd.Flags().IntVarP(&blockCycles, "cycles", "c", 4, "work cycles (pomodoro only)")
	blocksAddCmd.Flags().StringVar(&blockIcon, "icon", "", "icon shown next to the name")
	blocksAddCmd.Flags().StringVar(&blockDescription, "description", "", "default work description")

	rootCmd.AddCommand(blocksCmd)
	blocksCmd.AddCommand(blocksListCmd, blocksAddCmd, blocksRmCmd, blocksImportCmd, blocksExportCmd)
}

func runBlocksList(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, _, err := env.service()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(svc.Blocks()))
	for i, b := range svc.Blocks() {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			b.Name,
			string(b.Kind),
			strconv.Itoa(b.WorkMinutes),
			strconv.Itoa(b.RestMinutes),
			strconv.Itoa(b.EffectiveCycles()),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), formatTable([]string{"#", "NAME", "KIND", "WORK", "REST", "CYCLES"}, rows))
	return nil
}

func runBlocksAdd(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var created model.Block
	err = env.mutate(func(svc *app.Service) error {
		created, err = svc.CreateBlock(model.Block{
			Name:        args[0],
			Kind:        model.BlockKind(blockKind),
			WorkMinutes: blockWork,
			RestMinutes: blockRest,
			Cycles:      blockCycles,
			Icon:        blockIcon,
			Description: blockDescription,
		})
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created block %s (%s)\n", created.Name, describeBlock(created))
	return nil
}

func runBlocksRm(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var removed model.Block
	err = env.mutate(func(svc *app.Service) error {
		removed, err = svc.ResolveBlock(args[0])
		if err != nil {
			return err
		}
		if removed.ID == model.QuickStartBlockID {
			return fmt.Errorf("%w: the quick start block is built in", app.ErrBlockNotFound)
		}
		return svc.DeleteBlock(removed.ID)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted block %s\n", removed.Name)
	return nil
}

func runBlocksImport(cmd *cobra.Command, args []string) error {
	blocks, err := store.ReadBlocksFile(args[0])
	if err != nil {
		return err
	}
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var imported []model.Block
	err = env.mutate(func(svc *app.Service) error {
		imported, err = svc.ImportBlocks(blocks)
		return err
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d blocks\n", len(imported))
	return nil
}

func runBlocksExport(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, _, err := env.service()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return store.ExportBlocks(cmd.OutOrStdout(), svc.Blocks())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := store.ExportBlocks(f, svc.Blocks()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d blocks to %s\n", len(svc.Blocks()), args[0])
	return nil
}
