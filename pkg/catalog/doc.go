// Package catalog loads and validates rule catalog documents.
//
// A catalog document is a YAML (or TOML) file laid out as:
//
//	options:
//	  version: "1.0"
//	  ignore: ["localizer.*"]
//	DICOM:
//	  templates:
//	    anat_base:
//	      attributes: { Modality: MR }
//	      labels: { suffix: T1w }
//	  categories:
//	    - name: anat
//	      required: [suffix]
//	      rules:
//	        - id: t1w
//	          base: anat_base
//	          attributes: { SeriesDescription: "(?i)t1" }
//	          labels: { acq: "<ProtocolName>", run: "<<runindex>>" }
//	    - name: extra_data
//	      fallback: true
//	      rules:
//	        - id: catchall
//	          labels: { suffix: "<SeriesDescription>" }
//
// Template inheritance (the base key) is flattened at load time:
// a rule starts as a copy of its base and applies field-level
// overrides, recursively, so no aliasing relationship survives into
// matching. All patterns are compiled once here; a pattern that does
// not compile fails the load, not every match.
package catalog
