package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go.ngs.io/tidewatch/internal/usecase"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).Background(lipgloss.Color("57")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	highStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	lowStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle    = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

const barWidth = 40

func renderStations(stations []usecase.StationSummary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d stations", len(stations))))
	b.WriteString("\n")
	for _, s := range stations {
		years := fmt.Sprintf("%d-%d", s.FirstYear, s.LastYear)
		line := fmt.Sprintf("%-28s %-9s %-9s %3d constituents", s.Name, s.Type, years, s.Constituents)
		if s.ReferenceName != "" {
			line += dimStyle.Render(" via " + s.ReferenceName)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderEvent(label string, ev *usecase.EventPoint) string {
	if ev == nil {
		return labelStyle.Render(label) + dimStyle.Render(" none in table")
	}
	return fmt.Sprintf("%s %s %s %.2fm", labelStyle.Render(label), kindStyle(ev.Kind).Render(strings.ToUpper(ev.Kind)), ev.Time, ev.LevelM)
}

func kindStyle(kind string) lipgloss.Style {
	if kind == "high" {
		return highStyle
	}
	return lowStyle
}

func renderTable(resp *usecase.TableResponse) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(resp.Station.Name + " " + resp.Timezone))
	b.WriteString("\n")

	now := []string{labelStyle.Render("at") + " " + resp.Time}
	if resp.LevelM != nil {
		now = append(now, fmt.Sprintf("%s %.2fm", labelStyle.Render("level"), *resp.LevelM))
	}
	if resp.RateMPerHour != nil {
		now = append(now, fmt.Sprintf("%s %+.2fm/h", labelStyle.Render("rate"), *resp.RateMPerHour))
	}
	now = append(now, renderEvent("previous", resp.Previous), renderEvent("next", resp.Next))
	b.WriteString(boxStyle.Render(strings.Join(now, "\n")))
	b.WriteString("\n")

	for _, day := range resp.Days {
		b.WriteString(renderDay(day))
	}
	return b.String()
}

func renderDay(day usecase.DayResponse) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(day.Date))
	b.WriteString("\n")
	for _, ev := range day.Events {
		fmt.Fprintf(&b, "  %s %s %6.2fm\n", kindStyle(ev.Kind).Render(fmt.Sprintf("%-4s", strings.ToUpper(ev.Kind))), ev.Time, ev.LevelM)
	}
	if day.LowM == nil || day.HighM == nil || *day.HighM <= *day.LowM {
		return b.String()
	}
	low, high := *day.LowM, *day.HighM
	for _, p := range day.Levels {
		n := int((p.LevelM - low) / (high - low) * barWidth)
		n = max(0, min(barWidth, n))
		fmt.Fprintf(&b, "  %s %6.2fm %s\n", dimStyle.Render(p.Time), p.LevelM, strings.Repeat("█", n))
	}
	return b.String()
}

func renderVerify(r *usecase.VerifyReport) string {
	status := passStyle.Render("PASS")
	if !r.Passed {
		status = failStyle.Render("FAIL")
	}
	lines := []string{
		fmt.Sprintf("%s %s", status, r.Station.Name),
		fmt.Sprintf("%s %d", labelStyle.Render("fixtures"), r.Pairs),
		fmt.Sprintf("%s %.4fm", labelStyle.Render("mean"), r.MeanErrorM),
		fmt.Sprintf("%s %.4fm", labelStyle.Render("rmse"), r.RMSEM),
		fmt.Sprintf("%s %.4fm (tolerance %.2fm)", labelStyle.Render("max table error"), r.MaxAbsErrorM, r.ToleranceM),
		fmt.Sprintf("%s %.4fm", labelStyle.Render("max predict error"), r.PredictMaxErrorM),
		fmt.Sprintf("%s %d", labelStyle.Render("failures"), r.Failures),
	}
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n"
}
