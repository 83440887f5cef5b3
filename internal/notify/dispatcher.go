package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kt1928/building-monitor/internal/building"
)

const allClearMessage = "✅ All addresses checked. No new complaints or violations. All properties are in good standing."

// Dispatcher groups run results by owner and sends one payload per owner
// per run. A delivery failure for one owner never blocks delivery to the
// others.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger

	// Now stamps payload titles and timestamps; overridable in tests.
	Now func() time.Time
}

// NewDispatcher builds a dispatcher over the given sink.
func NewDispatcher(sink Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: logger, Now: time.Now}
}

// DispatchOwners sends one payload to each owner that has a webhook
// configured. addressesByOwner scopes the "Addresses Checked" count to
// the owner's own assignments. Returns the number of successful sends.
func (d *Dispatcher) DispatchOwners(ctx context.Context, report *building.Report, owners []building.Owner, addressesByOwner map[int64][]string) int {
	delivered := 0
	for _, owner := range owners {
		if owner.Webhook == "" {
			d.logger.Warn("no webhook configured for owner", "owner", owner.Name)
			continue
		}

		checked := countChecked(report.Checked, addressesByOwner[owner.ID])
		embed := d.buildEmbed(report, owner.ID, owner.Name, checked)

		if err := d.sink.Send(ctx, owner.Webhook, embed); err != nil {
			d.logger.Error("notification delivery failed", "owner", owner.Name, "error", err)
			continue
		}
		d.logger.Info("notification sent", "owner", owner.Name)
		delivered++
	}
	return delivered
}

// DispatchGlobal sends the single non-partitioned payload carrying every
// change of the run. Returns 1 on success, 0 otherwise.
func (d *Dispatcher) DispatchGlobal(ctx context.Context, report *building.Report, webhookURL string) int {
	if webhookURL == "" {
		d.logger.Warn("no global webhook configured, skipping notification")
		return 0
	}

	embed := d.buildEmbed(report, building.GlobalBucket, "", len(report.Checked))
	if err := d.sink.Send(ctx, webhookURL, embed); err != nil {
		d.logger.Error("notification delivery failed", "error", err)
		return 0
	}
	d.logger.Info("notification sent")
	return 1
}

// buildEmbed assembles the alert payload for one recipient bucket.
func (d *Dispatcher) buildEmbed(report *building.Report, bucket int64, ownerName string, checked int) Embed {
	now := d.Now()
	changes := report.StatusChanges[bucket]
	complaints := report.NewComplaints[bucket]

	embed := Embed{
		Title:     fmt.Sprintf("Building Monitor Stats - %d/%d - %s", int(now.Month()), now.Day(), strings.ToLower(now.Format("3:04 PM"))),
		Color:     embedColor,
		Timestamp: now.Format(time.RFC3339),
		Footer:    &EmbedFooter{Text: "🏢 Generated on " + now.Format("01/02/2006 - 03:04 PM")},
	}

	if ownerName != "" {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Owner", Value: ownerName})
	}
	embed.Fields = append(embed.Fields,
		EmbedField{Name: "Addresses Checked", Value: fmt.Sprintf("%d", checked), Inline: true},
		EmbedField{Name: "BIS Changes", Value: fmt.Sprintf("%d", len(changes)), Inline: true},
		EmbedField{Name: "New 311 Complaints", Value: fmt.Sprintf("%d", len(complaints)), Inline: true},
		EmbedField{Name: "Failed Addresses", Value: fmt.Sprintf("%d", len(report.Failed)), Inline: true},
	)

	for _, change := range changes {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "BIS Change: " + change.Address,
			Value: formatStatusChange(change),
		})
	}

	for _, alert := range complaints {
		for _, c := range alert.Complaints {
			embed.Fields = append(embed.Fields, EmbedField{
				Name:  fmt.Sprintf("311 Complaint: %s (Last: %s)", alert.Address, alert.LastDate),
				Value: formatComplaint(c),
			})
		}
	}

	if len(report.Failed) > 0 {
		var lines []string
		for _, f := range report.Failed {
			lines = append(lines, fmt.Sprintf("%s (%s: %s)", f.Address, f.Stage, f.Reason))
		}
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "Failed Addresses",
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(changes) == 0 && len(complaints) == 0 && len(report.Failed) == 0 {
		embed.Description = allClearMessage
	}

	return embed
}

func formatStatusChange(change building.StatusChange) string {
	var b strings.Builder
	for _, delta := range change.Deltas {
		fmt.Fprintf(&b, "%s: %d → %d\n", delta.Field, delta.Old, delta.New)
	}
	fmt.Fprintf(&b, "New Totals: Complaints=%d, Violations-DOB=%d, Violations-OATH/ECB=%d",
		change.NewTotals.Complaints, change.NewTotals.ViolationsDOB, change.NewTotals.ViolationsECB)
	return b.String()
}

func formatComplaint(c building.Complaint) string {
	return fmt.Sprintf(
		"Date: %s\nType: %s\nDescriptor: %s\nAgency: %s\nStatus: %s\nClosed Date: %s\nResolution: %s\nIncident ID: %s",
		orNA(c.CreatedDate), orNA(c.Type), orNA(c.Descriptor), orNA(c.Agency),
		orNA(c.Status), orNA(c.ClosedDate), orNA(c.Resolution), orNA(c.IncidentID),
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func countChecked(checked, ownerAddrs []string) int {
	owned := make(map[string]struct{}, len(ownerAddrs))
	for _, a := range ownerAddrs {
		owned[a] = struct{}{}
	}
	n := 0
	for _, a := range checked {
		if _, ok := owned[a]; ok {
			n++
		}
	}
	return n
}
