package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadBatchFile reads source texts from a file, one per line. Blank lines
// and lines starting with '#' are skipped so batch files can carry notes.
func ReadBatchFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return texts, nil
}
