package profile

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
)

// saveData is the JSON-serializable mirror of Profile. fmd and hybrid
// types already implement MarshalJSON/UnmarshalJSON, so encoding/json
// round-trips the full logical state without a custom walk.
type saveData struct {
	Name               string
	RootSecret         json.RawMessage
	PrivateKey         json.RawMessage
	Contacts           map[string]KeySet
	DetectionKeyLength int
	LastSeenTag        json.RawMessage `json:",omitempty"`
}

// Serialize converts a Profile to its JSON save format.
func (p *Profile) Serialize() ([]byte, error) {
	rootSecret, err := json.Marshal(p.RootSecret)
	if err != nil {
		return nil, err
	}
	privateKey, err := json.Marshal(p.PrivateKey)
	if err != nil {
		return nil, err
	}

	sd := saveData{
		Name:               p.Name,
		RootSecret:         rootSecret,
		PrivateKey:         privateKey,
		Contacts:           p.Contacts,
		DetectionKeyLength: p.DetectionKeyLength,
	}

	if p.LastSeenTag != nil {
		lastSeen, err := json.Marshal(p.LastSeenTag)
		if err != nil {
			return nil, err
		}
		sd.LastSeenTag = lastSeen
	}

	return json.Marshal(sd)
}

// LoadSaveData deserializes the JSON save format produced by Serialize.
func LoadSaveData(data []byte) (*Profile, error) {
	var sd saveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}

	p := &Profile{
		Name:               sd.Name,
		Contacts:           sd.Contacts,
		DetectionKeyLength: sd.DetectionKeyLength,
	}
	if p.Contacts == nil {
		p.Contacts = make(map[string]KeySet)
	}

	if err := json.Unmarshal(sd.RootSecret, &p.RootSecret); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sd.PrivateKey, &p.PrivateKey); err != nil {
		return nil, err
	}
	if len(sd.LastSeenTag) > 0 {
		if err := json.Unmarshal(sd.LastSeenTag, &p.LastSeenTag); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Save writes the profile's full logical state to path as JSON.
func (p *Profile) Save(path string) error {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Save",
		"package":  "profile",
		"profile":  p.Name,
		"path":     path,
	})

	data, err := p.Serialize()
	if err != nil {
		logger.WithError(err).Error("failed to serialize profile")
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		logger.WithError(err).Error("failed to write profile file")
		return ErrPersistence
	}
	return nil
}

// Load reads and deserializes a profile previously written by Save.
func Load(path string) (*Profile, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Load",
		"package":  "profile",
		"path":     path,
	})

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithError(err).Error("failed to read profile file")
		return nil, ErrPersistence
	}

	p, err := LoadSaveData(data)
	if err != nil {
		logger.WithError(err).Error("failed to deserialize profile")
		return nil, ErrPersistence
	}
	p.SavePath = path
	return p, nil
}
