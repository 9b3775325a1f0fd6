// Package schema validates string answers against simple value types.
//
// Every answer in a wizard is stored as a string. A Type decides whether such
// a string is acceptable for its purpose: free text, a number, an ISO date, an
// e-mail address, a phone number, a member of a fixed set of options, or a
// confirmation. Schemas map field names to types:
//
//	contact := schema.Schema{
//	    "full_name": schema.Text(),
//	    "email":     schema.Email(),
//	}
//
//	if err := schema.Validate(contact, map[string]string{"full_name": "Ada"}); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e.Key, e.Reason)
//	    }
//	}
//
// Custom validators can be registered for domain-specific values:
//
//	positive := schema.Custom("positive", func(v string) error {
//	    f, err := strconv.ParseFloat(v, 64)
//	    if err != nil || f <= 0 {
//	        return fmt.Errorf("must be a positive number")
//	    }
//	    return nil
//	})
//
// The package has no dependencies beyond the standard library so the same
// rules can run inside the engine, the HTTP adapter and the terminal runner.
package schema
