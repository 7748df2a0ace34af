package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RussellBTech/RewatchTranscriptFetcher/instrument"
	"github.com/RussellBTech/RewatchTranscriptFetcher/orchestrator"
)

const dateLayout = "2006-01-02"

func NewFetchCmd(deps *Dependencies) *cobra.Command {
	var start, end, out string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch transcripts for a date range and save them as text",
		Long:  "Fetch the transcripts of every meeting created between --start and --end (inclusive, whole days) and save them to one text file.\nThe API key is read from REWATCH_API_KEY unless --api-key is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := deps.Config
			loc, err := c.Location()
			if err != nil {
				return err
			}
			today := time.Now().In(loc)

			startDate, err := parseDate("start date", start, today, loc)
			if err != nil {
				return err
			}
			endDate, err := parseDate("end date", end, today, loc)
			if err != nil {
				return err
			}

			log := logrus.NewEntry(deps.Logger).WithField("pipeline", c.Pipeline.Name)
			var rec instrument.Recorder = instrument.Nop{}
			var timings *instrument.TimingLog
			if c.Fetch.Debug || c.Paths.Metrics != "" {
				var m *instrument.Metrics
				if c.Paths.Metrics != "" {
					m = instrument.NewMetrics()
				}
				logPath := ""
				if c.Fetch.Debug {
					logPath = c.Paths.DebugLog
				}
				timings = instrument.NewTimingLog(logPath, m, log)
				rec = timings
			}

			p := orchestrator.NewPipeline(c,
				orchestrator.WithLogger(log),
				orchestrator.WithRecorder(rec),
				orchestrator.WithLocation(loc),
			)
			report, err := p.Fetch(cmd.Context(), orchestrator.FetchRequest{
				Subdomain: c.Rewatch.Subdomain,
				APIKey:    c.Rewatch.APIKey,
				StartDate: startDate,
				EndDate:   endDate,
			})
			if timings != nil {
				_ = timings.Close(c.Paths.Metrics)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = filepath.Join(c.Paths.Outputs, orchestrator.ReportName(today))
			}
			if _, err := orchestrator.Persist(out, report); err != nil {
				return fmt.Errorf("saving report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcripts saved: %s (%d of %d meetings)\n", out, report.Matched, report.MeetingCount)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("subdomain", "", "Rewatch channel subdomain (<subdomain>.rewatch.com)")
	f.String("api-key", "", "Rewatch API key (prefer REWATCH_API_KEY)")
	f.String("timezone", "", "IANA timezone used to interpret the dates (default Local)")
	f.Bool("include-summary", false, "append each meeting's summary after its transcript")
	f.String("metrics", "", "write prometheus textfile metrics to this path")
	f.StringVar(&start, "start", "", "first day to include, YYYY-MM-DD (default today)")
	f.StringVar(&end, "end", "", "last day to include, YYYY-MM-DD (default today)")
	f.StringVarP(&out, "out", "o", "", "report path (default <outputs>/Transcripts_YYYYMMDD.txt)")

	_ = deps.Viper.BindPFlag("rewatch.subdomain", f.Lookup("subdomain"))
	_ = deps.Viper.BindPFlag("rewatch.api_key", f.Lookup("api-key"))
	_ = deps.Viper.BindPFlag("rewatch.timezone", f.Lookup("timezone"))
	_ = deps.Viper.BindPFlag("fetch.include_summary", f.Lookup("include-summary"))
	_ = deps.Viper.BindPFlag("paths.metrics", f.Lookup("metrics"))

	return cmd
}

func parseDate(field, s string, today time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return today, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, &orchestrator.InvalidInputError{Field: field, Reason: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return t, nil
}
