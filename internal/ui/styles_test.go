package ui

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageHelpers(t *testing.T) {
	cases := []struct {
		got, prefix, msg string
	}{
		{Success("done"), "✓", "done"},
		{Warn("careful"), "⚠", "careful"},
		{Err("failed"), "✗", "failed"},
		{Info("note"), "ℹ", "note"},
		{Hint("w3sale sale status"), "›", "w3sale sale status"},
	}
	for _, c := range cases {
		assert.Contains(t, c.got, c.prefix)
		assert.Contains(t, c.got, c.msg)
	}
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
	assert.Contains(t, Val("1.5"), "1.5")
	assert.Contains(t, Meta("some metadata"), "some metadata")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0xf39F…2266", TruncateAddr("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0123456789", TruncateAddr("0123456789"))
}

func TestDangerBox(t *testing.T) {
	out := DangerBox("Finalize sale", "Sweeps all funds to the owner.", "Cannot be undone.")
	assert.Contains(t, out, "Finalize sale")
	assert.Contains(t, out, "Sweeps all funds to the owner.")
	assert.Contains(t, out, "Cannot be undone.")
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Sale", [][2]string{
		{"Price", "0.001"},
		{"Status", "open"},
	})
	assert.Contains(t, out, "Sale")
	assert.Contains(t, out, "Price:")
	assert.Contains(t, out, "0.001")
	assert.Less(t, strings.Index(out, "Price"), strings.Index(out, "Status"))
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 6}, {Title: "Balance", Width: 10}})
	tbl.AddRow(Row{"alice", "1.5"})
	tbl.AddRow(Row{"bartholomew", "2"})
	tbl.AddRow(Row{"carol"})

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Balance")
	assert.Contains(t, lines[1], "------")
	assert.Contains(t, lines[2], "alice ")
	assert.Contains(t, lines[3], "barth…")
	assert.NotContains(t, lines[3], "bartholomew")
	assert.Contains(t, lines[4], "carol")
}

func TestPadR(t *testing.T) {
	assert.Equal(t, "ab   ", padR("ab", 5))
	assert.Equal(t, "abcde", padR("abcde", 5))
	assert.Equal(t, "abcd…", padR("abcdefgh", 5))
	assert.Equal(t, "", padR("", 0))
}

func TestProgressBar(t *testing.T) {
	out := ProgressBar(big.NewInt(25), big.NewInt(100), 20)
	assert.Contains(t, out, "25.0%")
	assert.Equal(t, 5, strings.Count(out, "█"))
	assert.Equal(t, 15, strings.Count(out, "░"))

	assert.Contains(t, ProgressBar(big.NewInt(5), new(big.Int), 10), "0.0%")
	assert.Contains(t, ProgressBar(big.NewInt(200), big.NewInt(100), 10), "100.0%")
	assert.Contains(t, ProgressBar(nil, nil, 10), "0.0%")
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader("yes\nn\n\nname\n\n"), Out: &out}

	assert.True(t, p.Confirm("Deploy?"))
	assert.False(t, p.ConfirmDanger("Finalize?"))
	assert.False(t, p.Confirm("Empty means no?"))
	assert.Equal(t, "name", p.PromptInput("Wallet name", "deployer"))
	assert.Equal(t, "deployer", p.PromptInput("Wallet name", "deployer"))

	assert.Contains(t, out.String(), "Deploy?")
	assert.Contains(t, out.String(), "Finalize?")
	assert.Contains(t, out.String(), "(deployer)")
}

func TestSpinnerWritesAndClears(t *testing.T) {
	var out safeBuffer
	s := NewSpinnerTo(&out, "deploying")
	s.Start()
	s.StopWithMsg("deployed")

	got := out.String()
	assert.Contains(t, got, "deploying")
	assert.True(t, strings.HasSuffix(got, "deployed\n"))
}
