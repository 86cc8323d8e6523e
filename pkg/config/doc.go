/*
Package config persists camorg settings between runs.

	            +-------------+
	            |  Settings   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   JSON   | |   YAML   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Remembers the last source and target folders
- Holds scan preferences (date source, extensions, ignore patterns)
- Holds worker limits (max concurrent jobs, prune age)

🔄 Flow:
1. Load picks a parser from the file extension
2. A missing file yields Default()
3. Validate normalizes values and fills defaults
4. Save encodes with the same parser and replaces the file atomically

🔍 Example:

	settings, err := config.Load(ctx, config.DefaultPath())
	if err != nil {
		return err
	}
	settings.SourceFolder = "/Volumes/EOS_DIGITAL/DCIM"
	if err := settings.Save(ctx, config.DefaultPath()); err != nil {
		return err
	}
*/
package config
