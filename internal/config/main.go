package config

import (
	"fmt"

	"gopkg.in/alecthomas/kingpin.v2"
)

type Command int

const (
	Edit Command = iota
	Ticks
	Serve
	History
)

var (
	app = kingpin.New("karaoke", "Time a song against its music with a metronome")

	SettingsFile = app.Flag("settings", "YAML audio settings").Default("karaoke.yaml").Short('c').String()
	Database     = app.Flag("database", "Saved timings").Default("./timings.db").String()
	Verbose      = app.Flag("verbose", "Log debug messages").Short('v').Bool()

	editCmd     = app.Command("edit", "Edit the timing of a song in the terminal").Default()
	editChart   = editCmd.Arg("chart", "Song .sm file").Required().ExistingFile()
	FramePeriod = editCmd.Flag("frame-period", "Render frame period").Default("16ms").Short('p').Duration()

	ticksCmd   = app.Command("ticks", "Print the metronome schedule of a song")
	ticksChart = ticksCmd.Arg("chart", "Song .sm file").Required().ExistingFile()
	From       = ticksCmd.Flag("from", "First beat, as n/d or a decimal").Default("0").Short('f').String()
	Count      = ticksCmd.Flag("count", "Number of ticks to print").Default("16").Short('n').Int()
	Follow     = ticksCmd.Flag("follow", "Play the music and follow the ticks").Bool()

	serveCmd   = app.Command("serve", "Play a song and accept remote control over HTTP")
	serveChart = serveCmd.Arg("chart", "Song .sm file").Required().ExistingFile()
	Addr       = serveCmd.Flag("addr", "Listen address").Default(":8088").Short('a').String()

	historyCmd   = app.Command("history", "List the saved revisions of a song's timing")
	historyChart = historyCmd.Arg("chart", "Song .sm file").Required().ExistingFile()

	// Chart is the song file of whichever command was given.
	Chart string
)

// Parse reads the command line. args excludes the program name.
func Parse(version string, args []string) (Command, error) {
	app.Version(version)
	cmd, err := app.Parse(args)
	if nil != err {
		return 0, err
	}
	switch cmd {
	case editCmd.FullCommand():
		Chart = *editChart
		return Edit, nil
	case ticksCmd.FullCommand():
		Chart = *ticksChart
		return Ticks, nil
	case serveCmd.FullCommand():
		Chart = *serveChart
		return Serve, nil
	case historyCmd.FullCommand():
		Chart = *historyChart
		return History, nil
	}
	return 0, fmt.Errorf("unknown command %q", cmd)
}
