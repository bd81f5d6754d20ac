package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/reporting"
	"taskflow/internal/services"
)

// bindFunc fills the kind-specific fields of a request from flags.
type bindFunc func(cmd *cobra.Command, req *services.ReportRequest) error

func newReportCmd(kind reporting.ReportType, use, short string, flags func(*cobra.Command), bind bindFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			f, err := services.ParseFormat(format)
			if err != nil {
				return err
			}
			req := services.ReportRequest{Kind: kind, Format: f}
			if err := bind(cmd, &req); err != nil {
				return err
			}

			env, err := openEnv(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.close()

			export, err := env.gen.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeExport(cmd, export, f)
		},
	}
	flags(cmd)
	return cmd
}

func writeExport(cmd *cobra.Command, export *services.Export, f services.Format) error {
	body := export.Body
	if f == services.FormatJSON {
		var err error
		if body, err = json.MarshalIndent(export.Data, "", "  "); err != nil {
			return err
		}
		body = append(body, '\n')
	}

	out, _ := cmd.Flags().GetString("out")
	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(body))
	}
	return nil
}

func dateFlag(cmd *cobra.Command, name string, end bool) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("--%s is required (YYYY-MM-DD)", name)
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	if end {
		t = reporting.EndOfDay(t)
	}
	return t, nil
}

func rangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last day, inclusive (YYYY-MM-DD)")
}

func bindRange(cmd *cobra.Command, req *services.ReportRequest) (err error) {
	if req.Start, err = dateFlag(cmd, "start", false); err != nil {
		return err
	}
	req.End, err = dateFlag(cmd, "end", true)
	return err
}

var projectCmd = newReportCmd(reporting.TypeProject, "project", "Task completion for a project",
	func(cmd *cobra.Command) {
		cmd.Flags().Int64("id", 0, "project ID")
		rangeFlags(cmd)
	},
	func(cmd *cobra.Command, req *services.ReportRequest) error {
		req.ProjectID, _ = cmd.Flags().GetInt64("id")
		return bindRange(cmd, req)
	})

var userCmd = newReportCmd(reporting.TypeUser, "user", "Task completion for a user's owned and assigned tasks",
	func(cmd *cobra.Command) {
		cmd.Flags().Int64("id", 0, "user ID")
		rangeFlags(cmd)
	},
	func(cmd *cobra.Command, req *services.ReportRequest) error {
		req.UserID, _ = cmd.Flags().GetInt64("id")
		return bindRange(cmd, req)
	})

var teamCmd = newReportCmd(reporting.TypeTeam, "team", "Team summary for a project over a week or month",
	func(cmd *cobra.Command) {
		cmd.Flags().Int64("project", 0, "project ID")
		cmd.Flags().String("timeframe", "week", "week or month")
		cmd.Flags().String("start", "", "first day (YYYY-MM-DD)")
	},
	func(cmd *cobra.Command, req *services.ReportRequest) (err error) {
		req.ProjectID, _ = cmd.Flags().GetInt64("project")
		req.Timeframe, _ = cmd.Flags().GetString("timeframe")
		req.Start, err = dateFlag(cmd, "start", false)
		return err
	})

var loggedTimeProjectCmd = newReportCmd(reporting.TypeLoggedTimeProject, "logged-time-project",
	"Logged time for a project's unarchived tasks",
	func(cmd *cobra.Command) {
		cmd.Flags().Int64("id", 0, "project ID")
	},
	func(cmd *cobra.Command, req *services.ReportRequest) error {
		req.ProjectID, _ = cmd.Flags().GetInt64("id")
		return nil
	})

var loggedTimeDepartmentCmd = newReportCmd(reporting.TypeLoggedTimeDepartment, "logged-time-department",
	"Logged time for tasks assigned to a department",
	func(cmd *cobra.Command) {
		cmd.Flags().String("department", "", "department name")
	},
	func(cmd *cobra.Command, req *services.ReportRequest) error {
		req.Department, _ = cmd.Flags().GetString("department")
		return nil
	})

func init() {
	rootCmd.AddCommand(projectCmd, userCmd, teamCmd, loggedTimeProjectCmd, loggedTimeDepartmentCmd)
}
