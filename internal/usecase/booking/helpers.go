package booking

import "encoding/json"

// auditJSON serializa snapshots de auditoria; falha vira string vazia,
// audit nunca derruba a operação que descreve.
func auditJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
