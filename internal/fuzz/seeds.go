package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

var rubySeeds = []string{
	"",
	"has_css?(\"a\") || has_css?(\"b\")\n",
	"has_css?('.x') || has_css?('.y') || has_css?('.z')\n",
	"expect(page).to have_css(\".a\")\n",
	"it \"logs in\" do\n  visit root_path\n  click_on \"Sign in\"\nend\n",
	"describe User do\n  let(:user) { create(:user) }\nend\n",
	"foo(a, *rest, key: 1, &blk)\n",
	"x = 1 if y && !z\n",
	"page.has_css?(\"a\") or has_css?(\"b\")\n",
	"has_css?(\"a\\\"b\") || has_css?(\"c\")\n",
	"\"#{interp}\" || 'plain'\n",
	"[1, 2, 3].each { |n| puts n }\n",
	"has_css?(\"a\") ||\n  has_css?(\"b\")\r\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range rubySeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every *.rb file under the repository testdata.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".rb" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
