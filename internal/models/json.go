package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ======================================================
// JSON COLUMN HELPERS
// ======================================================
// Os campos "metadata" são compartilhados entre versões do schema:
// campos desconhecidos são ignorados e campos ausentes recebem o
// zero value (tolerância forward/backward).

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dst any, src any) error {
	if src == nil {
		return nil
	}
	switch s := src.(type) {
	case []byte:
		if len(s) == 0 {
			return nil
		}
		return json.Unmarshal(s, dst)
	case string:
		if s == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
