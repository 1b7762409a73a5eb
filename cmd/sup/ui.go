package main

import (
	"fmt"
	"strings"

	cl "stackup/internal/cli"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) { success.Println(msg) }
func printWarn(msg string)    { warn.Println(msg) }
func printError(msg string)   { danger.Println(msg) }
func printInfo(msg string)    { neutral.Println(msg) }

func renderView(v cl.GameView) {
	st := v.State

	accent.Printf("Turn %d  [%s]\n", st.CurrentTurn, st.Difficulty)
	neutral.Printf("users=%s  cash=$%s  trust=%d/100  capacity=%s\n",
		withCommas(st.Users), withCommas(st.Cash), st.Trust, withCommas(st.MaxUserCapacity))
	if len(st.Infrastructure) > 0 {
		neutral.Printf("infra: %s\n", strings.Join(st.Infrastructure, ", "))
	}
	if len(st.HiredStaff) > 0 {
		neutral.Printf("staff: %s\n", strings.Join(st.HiredStaff, ", "))
	}
	if st.Consulting {
		neutral.Println("consulting boost active (3x capacity)")
	}
	if st.CapacityWarning {
		printWarn(fmt.Sprintf("CAPACITY EXCEEDED (%d turn streak)", st.ConsecutiveCapacityExceeded))
	}

	if st.Status != "PLAYING" {
		renderTerminal(st.Status, st.VictoryPath)
		return
	}

	if v.Event != nil {
		ev := v.Event
		danger.Printf("\n%s EVENT: %s\n", ev.Kind, ev.Title)
		neutral.Println(ev.Text)
		for _, c := range ev.Choices {
			fmt.Printf("  %s  %s\n", accent.Sprint(c.ID), c.Text)
		}
		printInfo("\nAnswer with: sup event <choice-id>")
		return
	}

	if v.Turn != nil {
		t := v.Turn
		accent.Printf("\n%s\n", t.Title)
		neutral.Println(t.Text)
		for _, c := range t.Choices {
			label := c.Text
			if c.Category != "" {
				label = fmt.Sprintf("%s (%s)", c.Text, c.Category)
			}
			fmt.Printf("  %s  %s\n", accent.Sprint(c.ID), label)
		}
		printInfo("\nPlay with: sup choose <choice-id>")
	}
}

func renderTerminal(status, victoryPath string) {
	switch {
	case strings.HasPrefix(status, "WON_"):
		success.Printf("\nVICTORY: %s\n", victoryPath)
	default:
		danger.Printf("\nGAME OVER: %s\n", status)
	}
	printInfo("See your score with: sup score")
}

func withCommas(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	out := b.String()
	if neg {
		return "-" + out
	}
	return out
}
