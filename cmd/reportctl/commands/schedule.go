package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskflow/internal/config"
	"taskflow/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect or trigger configured report schedules",
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer env.close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCRON\tKIND\tFORMAT\tRECIPIENTS")
		for _, s := range env.cfg.Schedules {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.Name, s.Cron, s.Kind, s.Format, len(s.Recipients))
		}
		return tw.Flush()
	},
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Generate and deliver one schedule now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer env.close()

		job, ok := findSchedule(env.cfg.Schedules, args[0])
		if !ok {
			return fmt.Errorf("no schedule named %q", args[0])
		}
		if err := scheduler.New(env.gen, env.mailer, env.chat).Run(cmd.Context(), job); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "delivered %s\n", job.Name)
		return nil
	},
}

func findSchedule(list []config.ScheduleConfig, name string) (config.ScheduleConfig, bool) {
	for _, s := range list {
		if s.Name == name {
			return s, true
		}
	}
	return config.ScheduleConfig{}, false
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd, scheduleRunCmd)
	rootCmd.AddCommand(scheduleCmd)
}
