// Package io reads and writes path sets: named connectivity paths, one per
// neuron type, each a list of edges plus optional pre-existing linkers.
//
// # Formats
//
// JSON, the canonical format:
//
//	{
//	  "paths": [
//	    {
//	      "name": "sst-l5",
//	      "edges": [
//	        {"from": "UBERON:0001950", "to": "UBERON:0001950@UBERON:0005394"}
//	      ],
//	      "linkers": []
//	    }
//	  ]
//	}
//
// A document with a top-level "edges" array instead of "paths" is read as a
// single path named "default".
//
// TOML, for hand-written fixtures:
//
//	[[path]]
//	name = "sst-l5"
//	edges = [["UBERON:0001950", "UBERON:0001950@UBERON:0005394"]]
//
// CSV, as exported from the spreadsheets that feed the pipeline. A header
// row is required and must name "from" and "to" columns; optional "path"
// and "linker" columns group rows and mark linker edges:
//
//	path,from,to,linker
//	sst-l5,UBERON:0001950,UBERON:0001950@UBERON:0005394,
//
// Node text is parsed with [node.ParseRegionLayer], so "region@layer"
// names a layer within a region.
//
// # Import and export
//
// [Import] and [Export] choose the format from the file extension; the
// Read* and Write* functions work on any reader or writer:
//
//	ps, err := io.Import("paths.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.Export(ps, "paths.json")
//
// Paths keep their input order and edges are not deduplicated, so a
// round trip through any format preserves the path set.
package io
