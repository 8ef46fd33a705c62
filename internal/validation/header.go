package validation

import "strings"

// BoundColumn associates a physical file column with a variable definition.
type BoundColumn struct {
	Position int    // 1-based file column
	Key      string // Canonical variable key
	Variable VariableDefinition
}

// ColumnBinding lists the matched columns in file order.
// Each file column and each variable appear at most once.
type ColumnBinding []BoundColumn

// reconcileHeader matches header labels against the dictionary, recording
// header errors and order warnings in rep. Blank, unknown and duplicate
// columns are left out of the returned binding.
func reconcileHeader(header []string, vars Variables, rep *report) ColumnBinding {
	keys := vars.Keys()

	byName := make(map[string]string, len(keys))
	for _, key := range keys {
		name := normalizeLabel(vars[key].OriginalName)
		if _, exists := byName[name]; !exists {
			byName[name] = key
		}
	}

	binding := make(ColumnBinding, 0, len(header))
	boundAt := make(map[string]int, len(keys))

	for i, raw := range header {
		pos := i + 1
		label := strings.TrimSpace(raw)

		if label == "" {
			rep.addError(msgBlankHeader(pos))
			continue
		}

		key, ok := byName[normalizeLabel(label)]
		if !ok {
			rep.addError(msgUnknownColumn(label, pos))
			continue
		}

		def := vars[key]
		if first, seen := boundAt[key]; seen {
			rep.addError(msgDuplicateColumn(def.OriginalName, first, pos))
			continue
		}
		boundAt[key] = pos

		if def.DictionaryRow != pos {
			rep.addWarning(msgOutOfOrder(def.OriginalName, pos, def.DictionaryRow))
		}
		binding = append(binding, BoundColumn{Position: pos, Key: key, Variable: def})
	}

	for _, key := range keys {
		if _, ok := boundAt[key]; !ok {
			rep.addError(msgMissingVariable(key))
		}
	}

	return binding
}
