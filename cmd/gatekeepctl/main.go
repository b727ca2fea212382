// gatekeepctl es el CLI de operación contra la API de gatekeep.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("GATEKEEP_URL", "http://localhost:8080")
		token   = envOr("GATEKEEP_TOKEN", "")
		out     = envOr("GATEKEEP_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "gatekeepctl",
		Short: "CLI de operación para gatekeep (login, sesión, permisos)",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de la API (env GATEKEEP_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "access token (env GATEKEEP_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: &http.Client{Timeout: timeout}}

	loginCmd := &cobra.Command{
		Use:   "login <account>",
		Short: "Login por password (lee GATEKEEP_PASSWORD o pide flag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl.Token = token
			pass, _ := cmd.Flags().GetString("password")
			if pass == "" {
				pass = os.Getenv("GATEKEEP_PASSWORD")
			}
			if pass == "" {
				return fmt.Errorf("falta password (flag --password o env GATEKEEP_PASSWORD)")
			}
			body, _ := json.Marshal(map[string]string{"account": args[0], "password": pass})
			status, resp, err := cl.do("POST", "/v1/auth/login", body, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}
	loginCmd.Flags().String("password", "", "password de la cuenta")

	codeCmd := &cobra.Command{
		Use:   "code <account>",
		Short: "Pide un código de un solo uso para la cuenta",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cl.Token = token
			body, _ := json.Marshal(map[string]string{"account": args[0]})
			status, resp, err := cl.do("POST", "/v1/auth/code", body, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Muestra el usuario autenticado (requiere --token)",
		RunE: func(_ *cobra.Command, _ []string) error {
			cl.Token = token
			status, resp, err := cl.do("GET", "/v1/auth/me", nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Invalida todos los tokens del usuario (requiere --token)",
		RunE: func(_ *cobra.Command, _ []string) error {
			cl.Token = token
			status, resp, err := cl.do("POST", "/v1/auth/logout", nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh <refresh-token>",
		Short: "Rota el par de tokens a partir del refresh token",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cl.Token = ""
			status, resp, err := cl.do("POST", "/v1/auth/refresh", nil, map[string]string{
				"X-Refresh-Token": args[0],
			})
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <resource> <action>",
		Short: "Chequea un permiso de la identidad del token (requiere --token)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			cl.Token = token
			body, _ := json.Marshal(map[string]string{
				"resource": args[0],
				"action":   strings.ToUpper(args[1]),
			})
			status, resp, err := cl.do("POST", "/v1/authz/check", body, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Consulta /readyz",
		RunE: func(_ *cobra.Command, _ []string) error {
			status, resp, err := cl.do("GET", "/readyz", nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	root.AddCommand(loginCmd, codeCmd, meCmd, logoutCmd, refreshCmd, checkCmd, healthCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
