package omnibus

import "strconv"

// ZipCodeCount is the number of entries Populate inserts.
const ZipCodeCount = 100_000

// ZipCodeDatabase is the keyed-counter store behind the opaque store handle.
// It maps five digit, zero padded keys to counts. Not safe for concurrent use.
type ZipCodeDatabase struct {
	population map[string]uint32
}

// NewZipCodeDatabase returns an empty store.
func NewZipCodeDatabase() *ZipCodeDatabase {
	return &ZipCodeDatabase{
		population: make(map[string]uint32),
	}
}

// Populate maps every key "00000" through "99999" to its integer value.
// Calling it again re-inserts the same values.
func (db *ZipCodeDatabase) Populate() {
	var buf [5]byte
	for i := uint32(0); i < ZipCodeCount; i++ {
		db.population[string(zipKey(buf[:0], i))] = i
	}
}

// PopulationOf returns the count stored for an exact key match, or 0.
func (db *ZipCodeDatabase) PopulationOf(zip string) uint32 {
	return db.population[zip]
}

// Len returns the number of keys in the store.
func (db *ZipCodeDatabase) Len() int {
	return len(db.population)
}

// Drop releases the mapping. The store is unusable afterwards.
func (db *ZipCodeDatabase) Drop() {
	db.population = nil
}

// zipKey appends i as a five digit, zero padded decimal.
func zipKey(dst []byte, i uint32) []byte {
	digits := strconv.AppendUint(nil, uint64(i), 10)
	for n := len(digits); n < 5; n++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}
