/*
Package config describes what datepatch edits: which files, and the ordered
substitution rules applied to each one.

	            +-------------+
	            |   Config    |
	            |  (Targets)  |
	            +------+------+
	                   |
	   +---------------+---------------+
	   |               |               |
	+--+---+       +---+---+       +---+---+
	| YAML |       | JSON  |       |  HCL  |
	+------+       +-------+       +-------+

🎯 Purpose:
- Provides the built-in date patch (Default, DateRules)
- Loads alternative rule sets from YAML, JSON or HCL files
- Validates rules before anything touches the disk

🔄 Flow:
1. Default() or Load(ctx, path)
2. Parser chosen by file extension
3. Validate normalizes paths and rejects duplicate targets and bad rules

📝 HCL expressions can reference default_date_format.

🔍 Example:

	cfg, err := config.Load(ctx, "datepatch.yaml")
	if err != nil {
		return err
	}
	for _, target := range cfg.Targets {
		rules := target.ReplacementRules()
		// ...
	}
*/
package config
