// Package addresses keeps track of deployed contract addresses between runs.
//
// Every network has its own JSON file holding a flat name -> address object.
// Writes merge into what's already there. The read-modify-write isn't locked,
// only one process per network may write at a time.
package addresses

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Store struct {
	log  *logrus.Entry
	path string
}

func FileName(network string) string {
	return fmt.Sprintf(".tmp-addresses-%s.json", network)
}

func NewStore(config *config.Config) (self *Store) {
	self = new(Store)
	self.log = logger.NewSublogger("addresses")
	self.path = filepath.Join(config.Addresses.Dir, FileName(config.Network.Name))
	return
}

func (self *Store) Path() string {
	return self.path
}

// Read returns an empty mapping if nothing was written yet
func (self *Store) Read() (out map[string]string, err error) {
	/* #nosec */
	content, err := os.ReadFile(self.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	out = make(map[string]string)
	if len(bytes.TrimSpace(content)) == 0 {
		return
	}
	err = json.Unmarshal(content, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", self.path, err)
	}
	return
}

func (self *Store) Get(name string) (address string, ok bool, err error) {
	all, err := self.Read()
	if err != nil {
		return
	}
	address, ok = all[name]
	return
}

// Write merges the given entries into the file, last write wins per key
func (self *Store) Write(entries map[string]string) (err error) {
	all, err := self.Read()
	if err != nil {
		return
	}

	maps.Copy(all, entries)

	content, err := json.Marshal(all)
	if err != nil {
		return
	}

	err = os.WriteFile(self.path, content, 0o644)
	if err != nil {
		return
	}

	self.log.WithField("path", self.path).WithField("keys", SortedKeys(entries)).Debug("Saved addresses")
	return
}

func SortedKeys(m map[string]string) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
