// This file is part of Stellago.
//
// Stellago is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Stellago is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Stellago.  If not, see <https://www.gnu.org/licenses/>.

// Package prefs is a system for saving and restoring preference values.
// Preference values (Bool, Int, String) are registered with a Disk instance
// against a dotted key. The Disk instance can then save all registered values
// to, and load them from, a plain text file of key/value pairs.
//
// Individual preference values are safe to read concurrently with updates,
// which is useful for values that are read in the emulation hot path while
// being changed from a user interface.
package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/stellago/stellago/curated"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "stellago.prefs"

// the first line of a valid prefs file.
const prefsHeader = "*stellago*"

// NoPrefsFile is a sentinel error returned by Load() when the prefs file does
// not exist. It is not a fatal condition, the file simply hasn't been saved
// yet.
const NoPrefsFile = "no prefs file: %v"

// the string that separates the key from the value on each line of the prefs
// file.
const keySep = " :: "

// Disk represents the plain text file that preference values are saved to.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add a preference value to the list of values to be saved/loaded. The key
// must be unique to this Disk instance.
func (dsk *Disk) Add(key string, p pref) error {
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf("prefs: duplicate key: %v", key)
	}
	if strings.Contains(key, keySep) {
		return curated.Errorf("prefs: illegal key: %v", key)
	}
	dsk.entries[key] = p
	return nil
}

// keys in deterministic order. makes the saved file stable and diffable.
func (dsk *Disk) keys() []string {
	k := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		k = append(k, key)
	}
	sort.Strings(k)
	return k
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, key := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", key, keySep, dsk.entries[key].String()))
	}
	return s.String()
}

// Save all registered preference values to disk.
func (dsk *Disk) Save() (rerr error) {
	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("prefs: %v", err)
		}
	}()

	fmt.Fprintln(f, prefsHeader)
	_, err = f.WriteString(dsk.String())
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Load registered preference values from disk. Values in the file that have
// no registered preference are ignored, as are registered preferences that do
// not appear in the file.
//
// If the prefs file does not exist the returned error wraps the NoPrefsFile
// sentinel. Callers will usually want to treat that as a non-error.
func (dsk *Disk) Load() (rerr error) {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return curated.Errorf(NoPrefsFile, dsk.path)
		}
		return curated.Errorf("prefs: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("prefs: %v", err)
		}
	}()

	scanner := bufio.NewScanner(f)

	if !scanner.Scan() || scanner.Text() != prefsHeader {
		return curated.Errorf("prefs: %v", fmt.Sprintf("not a valid prefs file (%s)", dsk.path))
	}

	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), keySep)
		if !ok {
			continue
		}
		if p, ok := dsk.entries[key]; ok {
			err = p.Set(value)
			if err != nil {
				return curated.Errorf("prefs: %v", err)
			}
		}
	}

	return nil
}
