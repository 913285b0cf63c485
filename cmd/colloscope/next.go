package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"colloscope/internal/model"
	"colloscope/internal/query"
)

var (
	nextClass string
	nextGroup string
	nextLimit int
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next sessions for a group",
	RunE:  runNext,
}

func init() {
	nextCmd.Flags().StringVar(&nextClass, "class", "", "class identifier")
	nextCmd.Flags().StringVar(&nextGroup, "group", "", "group code")
	nextCmd.Flags().IntVar(&nextLimit, "limit", 5, "number of sessions to print (0 or less prints all)")
	_ = nextCmd.MarkFlagRequired("class")
	_ = nextCmd.MarkFlagRequired("group")
}

func runNext(cmd *cobra.Command, _ []string) error {
	cfg, env, err := loadEnvironment()
	if err != nil {
		return err
	}

	store := model.NewStore()
	if err := store.LoadDir(cfg.DataDir, env.holidays, env.loc); err != nil {
		return err
	}

	c, ok := store.Get(nextClass)
	if !ok {
		return fmt.Errorf("unknown class %q (available: %s)",
			nextClass, strings.Join(store.Classes(), ", "))
	}

	upcoming := query.Upcoming(c.Colles, nextGroup, time.Now().In(env.loc), nextLimit, c.Holidays)
	if len(upcoming) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Aucune colle trouvée pour le groupe %s\n", nextGroup)
		return nil
	}

	for _, colle := range upcoming {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s (%s, salle %s)\n",
			colle.LongDate(), colle.ClockTime(),
			colle.Subject, colle.Professor, colle.Classroom)
	}
	return nil
}
