package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/roster"
	"github.com/railops/railops/internal/timeline"
)

func timelineCommand() *cli.Command {
	return &cli.Command{
		Name:      "timeline",
		Usage:     "print the rest/activity timeline of a duty",
		ArgsUsage: "<duty>",
		Action: withSession(func(c *cli.Context, s *session) error {
			id, err := requireArg(c, "duty")
			if err != nil {
				return err
			}
			view, err := s.svc.DutyView(c.Context, id, s.now)
			if err != nil {
				return err
			}
			if s.json {
				return s.printJSON(models.NewDuty(view))
			}

			fmt.Fprintf(s.out, "Duty %s (%s) %s-%s from %s\n",
				view.Duty.ID, view.Duty.ServiceClass, view.Duty.Start, view.Duty.End, view.Duty.HomeLocation)

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tFROM\tTO\tMIN\tWHAT\tUNIT")
			for _, seg := range view.Timeline {
				marker := " "
				if seg.Contains(view.At) {
					marker = ">"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					marker, seg.StartTime(), seg.EndTime(), seg.Duration(), describe(seg, view.Trips), unitOf(seg, view.Trips))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(s.out, "At %s: %s\n", opclock.FromMinutes(view.At), view.Status.Label)
			return nil
		}),
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "print the live status of a duty",
		ArgsUsage: "<duty>",
		Action: withSession(func(c *cli.Context, s *session) error {
			id, err := requireArg(c, "duty")
			if err != nil {
				return err
			}
			view, err := s.svc.DutyView(c.Context, id, s.now)
			if err != nil {
				return err
			}
			if s.json {
				return s.printJSON(models.DutyStatusResponse{
					DutyID: view.Duty.ID,
					At:     opclock.FromMinutes(view.At),
					Status: models.NewDutyStatus(view.Status),
				})
			}

			fmt.Fprintf(s.out, "%s %s %s%s\n", view.Duty.ID, view.Status.Kind, view.Status.Label, remaining(view.Status))
			return nil
		}),
	}
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "print the live status of every duty of a service class",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "service", Aliases: []string{"s"}, Usage: "service class; all duties when empty"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			board, err := s.svc.Board(c.Context, c.String("service"), s.now)
			if err != nil {
				return err
			}
			if s.json {
				return s.printJSON(models.NewBoard(board))
			}

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DUTY\tSERVICE\tSHIFT\tSTATUS\tDETAIL\tCONTACT")
			for _, e := range board.Entries {
				if e.Invalid {
					fmt.Fprintf(tw, "%s\t%s\t%s-%s\tINVALID\tmissing or malformed start or end\t\n", e.DutyID, e.ServiceClass, e.Start, e.End)
					continue
				}
				contact := ""
				if e.Current != nil {
					contact = e.Current.Contact
				}
				fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%s\t%s%s\t%s\n",
					e.DutyID, e.ServiceClass, e.Start, e.End, e.Status.Kind, e.Status.Label, remaining(e.Status), contact)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(s.out, "At %s: %d live, %d resting, %d not started, %d finished\n",
				opclock.FromMinutes(board.At),
				board.Counts[timeline.StatusLiveTrip], board.Counts[timeline.StatusAtRest],
				board.Counts[timeline.StatusNotStarted], board.Counts[timeline.StatusFinished])
			return nil
		}),
	}
}

func tripCommand() *cli.Command {
	return &cli.Command{
		Name:      "trip",
		Usage:     "print whether a trip is before, running or after",
		ArgsUsage: "<trip>",
		Action: withSession(func(c *cli.Context, s *session) error {
			code, err := requireArg(c, "trip")
			if err != nil {
				return err
			}
			view, err := s.svc.TripState(c.Context, code, s.now)
			if err != nil {
				return err
			}
			if s.json {
				return s.printJSON(models.NewTripState(view))
			}

			state := string(view.State)
			if state == "" {
				state = "UNKNOWN"
			}
			fmt.Fprintf(s.out, "%s %s %s %s-%s %s -> %s unit %s\n",
				view.Trip.TripCode, state, orDash(view.Trip.Line),
				orDash(view.Trip.Departure), orDash(view.Trip.Arrival),
				orDash(view.Trip.Origin), orDash(view.Trip.Destination), orDash(view.Trip.UnitID))
			return nil
		}),
	}
}

func contactCommand() *cli.Command {
	return &cli.Command{
		Name:      "contact",
		Usage:     "print the contact channel and maintenance flags of a unit",
		ArgsUsage: "<unit>",
		Action: withSession(func(c *cli.Context, s *session) error {
			id, err := requireArg(c, "unit")
			if err != nil {
				return err
			}
			view, err := s.svc.UnitContact(c.Context, id)
			if err != nil {
				return err
			}
			if s.json {
				return s.printJSON(models.NewUnitContact(view))
			}

			fmt.Fprintf(s.out, "%s contact %s%s\n", view.UnitID, orDash(view.Contact), flags(view.Status))
			return nil
		}),
	}
}

func describe(seg timeline.Segment, trips []roster.EnrichedTripReference) string {
	if seg.Kind == timeline.KindRest {
		word := "Rest"
		if seg.Rest == timeline.RestWait {
			word = "Wait"
		}
		return fmt.Sprintf("%s at %s", word, orDash(seg.Location))
	}
	desc := fmt.Sprintf("%s %s %s -> %s", orDash(seg.TripCode), seg.Line, orDash(seg.Origin), orDash(seg.Destination))
	if seg.TripIndex >= 0 && seg.TripIndex < len(trips) && trips[seg.TripIndex].IsProxy() {
		desc += " (proxy)"
	}
	return desc
}

func unitOf(seg timeline.Segment, trips []roster.EnrichedTripReference) string {
	if seg.Kind != timeline.KindActivity || seg.TripIndex < 0 || seg.TripIndex >= len(trips) {
		return ""
	}
	ref := trips[seg.TripIndex]
	if ref.Unassigned() {
		return "-"
	}
	if ref.Contact != "" {
		return ref.UnitID + " (" + ref.Contact + ")"
	}
	return ref.UnitID
}

func remaining(s timeline.DutyStatus) string {
	if s.RemainingMinutes == nil {
		return ""
	}
	return fmt.Sprintf(" (%d min)", *s.RemainingMinutes)
}

func flags(s *roster.UnitStatus) string {
	if s == nil {
		return ""
	}
	var set []string
	if s.OutOfService {
		set = append(set, "out of service")
	}
	if s.NeedsPhotos {
		set = append(set, "photos")
	}
	if s.NeedsPaperwork {
		set = append(set, "paperwork")
	}
	if s.NeedsCleaning {
		set = append(set, "cleaning")
	}
	if len(set) == 0 {
		return ""
	}
	return " [" + strings.Join(set, ", ") + "]"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
