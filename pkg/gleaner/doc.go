// Package gleaner aggregates the artifacts a maintenance run leaves
// behind (per-module audit snapshots and execution logs) into a fixed
// set of JSON report documents.
//
// Quick start:
//
//	res, err := gleaner.Run(ctx, gleaner.WithRoot("/var/lib/maintenance"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.OutputDir)
//
// Run is self-contained: missing or corrupt inputs degrade the reports
// instead of failing the run, and the full document set is written even
// for an empty root. The only error conditions are invalid options and
// an output directory that cannot be created.
package gleaner
