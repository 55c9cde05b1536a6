package user

import (
	"bufio"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trezcool/shule/core"
)

// baseline list, always active and kept sorted; the full ~20k list ships as a gzipped asset
var commonPasswords = []string{
	"111111", "123123", "123456", "1234567", "12345678", "123456789", "1234567890",
	"abc123", "azerty", "dragon", "iloveyou", "letmein", "monkey", "password",
	"password1", "princess", "qwerty", "qwerty123", "sunshine", "welcome",
}

// LoadCommonPasswords extends the common-password deny list with the contents
// of assets/common-passwords.txt.gz (one password per line), if present.
func LoadCommonPasswords(logger core.Logger) {
	path := filepath.Join(core.Getwd(), "assets", "common-passwords.txt.gz")
	if file, err := os.Open(path); err == nil {
		defer func() { _ = file.Close() }()
		if gzRdr, err := gzip.NewReader(file); err == nil {
			scanner := bufio.NewScanner(gzRdr)
			for scanner.Scan() {
				commonPasswords = append(commonPasswords, strings.ToLower(strings.TrimSpace(scanner.Text())))
			}
		} else {
			logger.Debug("skipping common passwords asset: " + err.Error())
		}
	}
	sort.Strings(commonPasswords)
}
