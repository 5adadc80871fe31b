package evm

import "testing"

func TestGetStorageStatus(t *testing.T) {
	var zero, one, two Word
	one[31] = 1
	two[31] = 2

	cases := []struct {
		name                string
		original, current, new Word
		want                StorageStatus
	}{
		{"unchanged from zero", zero, zero, zero, StorageAssigned},
		{"no-op write", one, one, one, StorageAssigned},
		{"fresh write", zero, zero, one, StorageAdded},
		{"clear to zero", one, one, zero, StorageDeleted},
		{"overwrite nonzero", one, one, two, StorageModified},
		{"dirtied-then-set from zero", one, zero, two, StorageDeletedAdded},
		{"dirtied-then-restore from zero", one, zero, one, StorageDeletedRestored},
		{"dirtied-then-clear nonzero", one, two, zero, StorageModifiedDeleted},
		{"dirtied-then-restore nonzero", one, two, one, StorageModifiedRestored},
		{"added-then-cleared in same tx", zero, one, zero, StorageAddedDeleted},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GetStorageStatus(c.original, c.current, c.new)
			if got != c.want {
				t.Errorf("GetStorageStatus(%v, %v, %v) = %v, want %v",
					c.original, c.current, c.new, got, c.want)
			}
		})
	}
}

func TestStorageStatusString(t *testing.T) {
	if got := StorageAdded.String(); got != "added" {
		t.Errorf("String() = %q, want %q", got, "added")
	}
	if got := StorageStatus(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
