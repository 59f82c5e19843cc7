package eventlog

import (
	"encoding/csv"
	"strings"
	"testing"
)

const header = "SessionTime,Xcord,Ycord,Event,TrialTime,TrialType,TargetClickNum,BackgroundClickNum,TrialNum,TrialColor,Subject,Date,PointsDelta,ScoreTotal,Fired"

func sampleLog() *Log {
	var l Log
	l.Append(Row{
		SessionTime: "0:00:00.000000",
		Kind:        TrialStart,
		TrialTime:   Opt(0.0),
		TrialType:   "80",
		TrialNum:    1,
		TrialColor:  "#35d07f",
		Subject:     "007",
		Date:        "2026-10-16",
		ScoreTotal:  0,
		Probability: Opt(0.8),
		Practice:    Opt(false),
	})
	l.Append(Row{
		SessionTime:    "0:00:01.234567",
		X:              Opt(360.5),
		Y:              Opt(359.49),
		Kind:           TargetClick,
		TrialTime:      Opt(1.234567),
		TrialType:      "80",
		TargetClickNum: 1,
		TrialNum:       1,
		TrialColor:     "#35d07f",
		Subject:        "007",
		Date:           "2026-10-16",
		ScoreTotal:     0,
		Fired:          Opt(true),
	})
	l.Append(Row{
		SessionTime:    "0:00:02.000000",
		Kind:           ShipDestroy,
		TrialTime:      Opt(2.0),
		TrialType:      "80",
		TargetClickNum: 1,
		TrialNum:       1,
		TrialColor:     "#35d07f",
		Subject:        `a,"b"`,
		Date:           "2026-10-16",
		PointsDelta:    Opt(20),
		ScoreTotal:     20,
	})
	return &l
}

func TestSerializeExactBytes(t *testing.T) {
	got := sampleLog().Serialize()
	want := strings.Join([]string{
		header,
		"0:00:00.000000,,,trial_start,0,80,0,0,1,#35d07f,007,2026-10-16,,0,",
		"0:00:01.234567,361,359,target_click,1.234567,80,1,0,1,#35d07f,007,2026-10-16,,0,1",
		`0:00:02.000000,,,ship_destroy,2,80,1,0,1,#35d07f,"a,""b""",2026-10-16,20,20,`,
	}, "\n")
	if got != want {
		t.Fatalf("unexpected export:\n%s\nwant:\n%s", got, want)
	}
}

func TestSerializeEmptyLogIsHeaderOnly(t *testing.T) {
	var l Log
	if got := l.Serialize(); got != header {
		t.Fatalf("unexpected empty export %q", got)
	}
}

func TestSerializeRoundTripsThroughCSVReader(t *testing.T) {
	l := sampleLog()
	l.Append(Row{SessionTime: "0:00:03.000000", Kind: TrialEnd, Subject: "line\nbreak", TrialTime: Opt(3.5)})

	records, err := csv.NewReader(strings.NewReader(l.Serialize())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != l.Len()+1 {
		t.Fatalf("expected %d records, got %d", l.Len()+1, len(records))
	}
	if strings.Join(records[0], ",") != header {
		t.Fatalf("unexpected header %v", records[0])
	}
	for i, row := range l.Rows() {
		want := row.Fields()
		got := records[i+1]
		if len(got) != len(Columns) {
			t.Fatalf("row %d: expected %d fields, got %d", i, len(Columns), len(got))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("row %d column %s: got %q want %q", i, Columns[j], got[j], want[j])
			}
		}
	}
}

func TestWriteToMatchesSerialize(t *testing.T) {
	l := sampleLog()
	var b strings.Builder
	n, err := l.WriteTo(&b)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if b.String() != l.Serialize() || int(n) != b.Len() {
		t.Fatalf("WriteTo and Serialize disagree")
	}
}

func TestRowsReturnsCopy(t *testing.T) {
	l := sampleLog()
	rows := l.Rows()
	rows[0].Subject = "changed"
	if l.Rows()[0].Subject != "007" {
		t.Fatalf("log row mutated through Rows copy")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{20, "20"},
		{0.8, "0.8"},
		{1.234567, "1.234567"},
		{-2, "-2"},
		{1e-7, "1e-7"},
		{1.5e21, "1.5e+21"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSummaries(t *testing.T) {
	l := sampleLog()
	l.Append(Row{Kind: ShipCrash, TargetClickNum: 1, BackgroundClickNum: 2, ScoreTotal: 18})
	l.Append(Row{Kind: TrialEnd, TargetClickNum: 1, BackgroundClickNum: 2, ScoreTotal: 18, TrialNum: 1})
	l.Append(Row{Kind: TrialStart, TrialNum: 2, TrialType: "20", ScoreTotal: 18, Probability: Opt(0.2)})

	sums := l.Summaries()
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	first := sums[0]
	if !first.Complete || first.Destroyed != 1 || first.Crashed != 1 || first.Fired != 1 {
		t.Fatalf("unexpected first summary: %+v", first)
	}
	if first.Probability != 0.8 || first.ScoreStart != 0 || first.ScoreEnd != 18 || first.BackgroundClicks != 2 {
		t.Fatalf("unexpected first summary: %+v", first)
	}
	if sums[1].Complete || sums[1].TrialType != "20" || sums[1].ScoreStart != 18 {
		t.Fatalf("unexpected open summary: %+v", sums[1])
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("007", "abc"); got != "space_defense_007_abc.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
	if got := Filename("  ", "abc"); got != "space_defense_NA_abc.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
	if got := Filename("a/b", "x"); got != "space_defense_a_b_x.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
