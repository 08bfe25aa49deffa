// Package labelstore provides a storage categorization and migration engine
// for labeled media files: images paired with annotation-JSON documents,
// stored in an object store under category-derived keys.
//
// The write path (placement) resolves annotation labels to one or more
// category directories and fans a file pair out to every resolved location.
// The repair path (migrate) scans for keys written under legacy or malformed
// layouts, recomputes their canonical location from the annotation metadata,
// and moves them there. Both paths share the pure pieces: the category
// resolver (category), the key grammar and destination calculator
// (objectkey), and the listing parser and image/JSON pairer (pairing).
//
// Object stores are abstracted behind the Store interface; S3-compatible and
// in-memory implementations are provided under storage. Ingestion records
// persist through the Repository interface with memory and Postgres
// implementations under repo.
package labelstore
