// Package resource provides opaque handle management for values that must not
// be exposed by layout.
//
// A Table maps small integer handles to Go values. The holder of a handle owns
// the value until it hands the handle back to Remove; handles are never
// garbage collected.
//
// # Handle Table
//
//	table := resource.NewTable[*omnibus.ZipCodeDatabase]()
//
//	// Insert a value, get a handle
//	h := table.Insert(db)
//
//	// Retrieve value by handle
//	db, ok := table.Get(h)
//
//	// Remove and get value (for ownership transfer back)
//	db, ok := table.Remove(h)
//
// Handle 0 is reserved and always invalid, so it can stand for a null pointer
// at the boundary. Freed handles are reused.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        log.Printf("handle %d created", e.Handle)
//	    case resource.EventDropped:
//	        log.Printf("handle %d dropped", e.Handle)
//	    }
//	}))
//
// # Memory Management
//
// Values implementing Dropper are dropped on Remove, Clear and Close.
// Failure to remove a handle leaks its value until the table is closed.
package resource
