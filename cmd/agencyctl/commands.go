package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/export"
	"github.com/prime/backoffice/metrics"
)

// EnvPassword is read by login when --password is not given.
const EnvPassword = "AGENCY_PASSWORD"

// =============================================================================
// LOGIN
// =============================================================================

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print an access token for the given credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or " + EnvPassword + ") are required")
			}

			auth, err := a.client.Login(cmd.Context(), client.AuthRequest{Email: email, Password: password})
			if err != nil {
				return err
			}

			if exp := client.TokenExpiry(auth.AccessToken); !exp.IsZero() {
				log.Info().Time("expires", exp).Str("email", auth.Email).Msg("logged in")
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $"+EnvPassword+")")
	return cmd
}

// =============================================================================
// CLIENTS
// =============================================================================

func (a *app) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Client policies"}

	cmd.AddCommand(&cobra.Command{
		Use:   "expiring",
		Short: "List policies close to their end date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireToken()
			if err != nil {
				return err
			}
			clients, err := a.client.ExpiringPolicies(cmd.Context(), token)
			if err != nil {
				return err
			}

			today := a.today()
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tEND DATE\tSTATUS\tDAYS LEFT\tRENEW")
			for _, c := range clients {
				m, err := policyOf(c, today)
				if err != nil {
					fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t%s\n", c.ID, c.Name, err)
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
					c.ID, c.Name, *c.PolicyEndDate, statusOf(c), m.DaysRemaining, yesNo(m.NeedsRenewal))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <id>",
		Short: "Show the policy countdown of one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireToken()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("client id %q: %w", args[0], err)
			}

			c, err := a.client.GetClient(cmd.Context(), token, id)
			if err != nil {
				return err
			}
			m, err := policyOf(*c, a.today())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Client:\t%s (#%d)\n", c.Name, c.ID)
			fmt.Fprintf(tw, "Insurance:\t%s\n", c.InsuranceType)
			fmt.Fprintf(tw, "Status:\t%s\n", statusOf(*c))
			fmt.Fprintf(tw, "Ends:\t%s\n", *c.PolicyEndDate)
			fmt.Fprintf(tw, "Days remaining:\t%d\n", m.DaysRemaining)
			fmt.Fprintf(tw, "Expired:\t%s\n", yesNo(m.IsExpired))
			fmt.Fprintf(tw, "Needs renewal:\t%s\n", yesNo(m.NeedsRenewal))
			return tw.Flush()
		},
	})

	return cmd
}

func policyOf(c client.ClientResponse, today time.Time) (metrics.PolicyMetrics, error) {
	rec, err := c.Record()
	if err != nil {
		return metrics.PolicyMetrics{}, err
	}
	return metrics.CalculatePolicyStatus(rec, today)
}

func statusOf(c client.ClientResponse) string {
	if c.PolicyStatus == nil {
		return "-"
	}
	return string(*c.PolicyStatus)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (a *app) attendanceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "attendance", Short: "Attendance records"}

	var date string
	team := &cobra.Command{
		Use:   "team",
		Short: "List the team's attendance for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireToken()
			if err != nil {
				return err
			}
			day, err := a.parseDay("date", date, a.today())
			if err != nil {
				return err
			}
			records, err := a.client.TeamAttendance(cmd.Context(), token, day)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tAGENT\tCHECK IN\tSTATUS\tLATE (MIN)\tHOURS")
			for _, r := range records {
				rec, err := r.Record(a.client.Location())
				if err == nil {
					var m metrics.AttendanceMetrics
					if m, err = metrics.CalculateAttendance(rec); err == nil {
						hours := "-"
						if rec.CheckOut != nil {
							hours = fmt.Sprintf("%.2f", m.TotalHoursWorked)
						}
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
							r.ID, r.AgentName(), rec.CheckIn.Format("15:04"), r.Status, m.LateMinutes, hours)
						continue
					}
				}
				fmt.Fprintf(tw, "%d\t%s\t-\t%s\t-\t%s\n", r.ID, r.AgentName(), r.Status, err)
			}
			return tw.Flush()
		},
	}
	team.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	cmd.AddCommand(team)

	var year, month int
	var local bool
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize your attendance for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireToken()
			if err != nil {
				return err
			}
			today := a.today()
			if year == 0 {
				year = today.Year()
			}
			if month == 0 {
				month = int(today.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("--month %d is out of range [1, 12]", month)
			}

			var s *metrics.AttendanceSummary
			if local {
				s, err = a.localSummary(cmd, token, year, time.Month(month))
			} else {
				s, err = a.client.MonthlySummary(cmd.Context(), token, year, time.Month(month))
			}
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Month:\t%d-%02d\n", year, month)
			fmt.Fprintf(tw, "Working days:\t%d\n", s.TotalDaysThisMonth)
			fmt.Fprintf(tw, "Present:\t%d\n", s.PresentDays)
			fmt.Fprintf(tw, "Late:\t%d\n", s.LateDays)
			fmt.Fprintf(tw, "Half days:\t%d\n", s.HalfDays)
			fmt.Fprintf(tw, "Absent:\t%d\n", s.AbsentDays)
			fmt.Fprintf(tw, "On leave:\t%d\n", s.LeaveDays)
			fmt.Fprintf(tw, "Average hours:\t%.2f\n", s.AverageHoursWorked)
			fmt.Fprintf(tw, "Attendance:\t%.2f%%\n", s.AttendancePercentage)
			if s.Skipped > 0 {
				fmt.Fprintf(tw, "Skipped records:\t%d\n", s.Skipped)
			}
			return tw.Flush()
		},
	}
	summary.Flags().IntVar(&year, "year", 0, "year (default this year)")
	summary.Flags().IntVar(&month, "month", 0, "month 1-12 (default this month)")
	summary.Flags().BoolVar(&local, "local", false, "compute from your records instead of asking the backend")
	cmd.AddCommand(summary)

	return cmd
}

// localSummary fetches the caller's records and summarizes those checked in
// during the month.
func (a *app) localSummary(cmd *cobra.Command, token string, year int, month time.Month) (*metrics.AttendanceSummary, error) {
	all, err := a.client.ListAttendance(cmd.Context(), token)
	if err != nil {
		return nil, err
	}

	var records []metrics.AttendanceRecord
	for _, r := range all {
		rec, err := r.Record(a.client.Location())
		if err != nil {
			log.Warn().Err(err).Int64("id", r.ID).Msg("skipping unreadable record")
			continue
		}
		if rec.CheckIn.Year() == year && rec.CheckIn.Month() == month {
			records = append(records, rec)
		}
	}

	s := metrics.SummarizeAttendance(records, metrics.WorkingDays(year, month))
	return &s, nil
}

// =============================================================================
// PERFORMANCE
// =============================================================================

func (a *app) performanceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "performance", Short: "Performance reviews"}

	var start, end string
	team := &cobra.Command{
		Use:   "team",
		Short: "List team reviews between two dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireToken()
			if err != nil {
				return err
			}
			from, to, err := a.reviewRange(start, end)
			if err != nil {
				return err
			}
			records, err := a.client.TeamPerformance(cmd.Context(), token, from, to)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tAGENT\tPERIOD\tACHIEVED\tSCORE\tRATING")
			for _, r := range records {
				period := r.PeriodStart + ".." + r.PeriodEnd
				m, err := metrics.CalculatePerformance(r.Record())
				if err != nil {
					fmt.Fprintf(tw, "%d\t%s\t%s\t-\t-\t%s\n", r.ID, r.AgentName(), period, err)
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f%%\t%.2f\t%s\n",
					r.ID, r.AgentName(), period, m.AchievementPercentage, m.OverallScore, m.Rating)
			}
			return tw.Flush()
		},
	}
	team.Flags().StringVar(&start, "start", "", "first day YYYY-MM-DD (default start of month)")
	team.Flags().StringVar(&end, "end", "", "last day YYYY-MM-DD (default today)")
	cmd.AddCommand(team)

	return cmd
}

func (a *app) reviewRange(start, end string) (time.Time, time.Time, error) {
	today := a.today()
	monthStart := metrics.StartOfMonth(today.Year(), today.Month()).In(a.client.Location())

	from, err := a.parseDay("start", start, monthStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := a.parseDay("end", end, today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("--end is before --start")
	}
	return from, to, nil
}

// =============================================================================
// EXPORT
// =============================================================================

func (a *app) exportCmd() *cobra.Command {
	var out, date, start, end string

	cmd := &cobra.Command{
		Use:       "export clients|attendance|performance",
		Short:     "Write an Excel report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clients", "attendance", "performance"},
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireToken()
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".xlsx"
			}

			ctx := cmd.Context()
			var rows int
			var writeErr error

			switch args[0] {
			case "clients":
				clients, err := a.client.ListClients(ctx, token)
				if err != nil {
					return err
				}
				rows = len(clients)
				f, err := export.ClientsWorkbook(clients, a.today())
				if err != nil {
					return err
				}
				writeErr = f.SaveAs(out)

			case "attendance":
				day, err := a.parseDay("date", date, a.today())
				if err != nil {
					return err
				}
				records, err := a.client.TeamAttendance(ctx, token, day)
				if err != nil {
					return err
				}
				rows = len(records)
				f, err := export.AttendanceWorkbook(records, a.client.Location())
				if err != nil {
					return err
				}
				writeErr = f.SaveAs(out)

			case "performance":
				from, to, err := a.reviewRange(start, end)
				if err != nil {
					return err
				}
				records, err := a.client.TeamPerformance(ctx, token, from, to)
				if err != nil {
					return err
				}
				rows = len(records)
				f, err := export.PerformanceWorkbook(records)
				if err != nil {
					return err
				}
				writeErr = f.SaveAs(out)
			}

			if writeErr != nil {
				return fmt.Errorf("write %s: %w", out, writeErr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", rows, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <report>.xlsx)")
	cmd.Flags().StringVar(&date, "date", "", "attendance: day YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&start, "start", "", "performance: first day YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "performance: last day YYYY-MM-DD")
	return cmd
}
