// internal/app/system/realtime/codec.go

package realtime

import "encoding/json"

func marshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func unmarshalEvent(data []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(data, &ev)
	return ev, err
}
