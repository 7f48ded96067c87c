package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of the environment variables that override
// configuration keys, such as ICNT_NUM_VCS for num_vcs.
const EnvPrefix = "ICNT_"

// LoadDotEnv loads the variables in the given files, or in .env when no
// file is given, into the environment. Missing files are ignored. Variables
// that are already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}

// ApplyEnv overrides the keys whose environment variable is set. The lookup
// function has the signature of os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("yaml")
		if key == "" {
			continue
		}

		value, ok := lookup(EnvPrefix + strings.ToUpper(key))
		if !ok {
			continue
		}

		if err := setField(v.Field(i), value); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v",
				ErrInvalidConfig, EnvPrefix, strings.ToUpper(key), value, err)
		}
	}

	return nil
}

func setField(f reflect.Value, value string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}

		f.SetInt(int64(n))
	case reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}

		f.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}

		f.SetBool(b)
	case reflect.Float64:
		x, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}

		f.SetFloat(x)
	case reflect.Slice:
		return setIntSlice(f, value)
	default:
		return fmt.Errorf("unsupported kind %s", f.Kind())
	}

	return nil
}

func setIntSlice(f reflect.Value, value string) error {
	var list []int

	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}

		list = append(list, n)
	}

	f.Set(reflect.ValueOf(list))

	return nil
}
